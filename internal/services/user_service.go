package services

import (
	"errors"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"noticeboard/internal/models"
)

// UserService is the identity store: account creation, credential
// verification and admin user management.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService { return &UserService{db: db} }

// UserUpdate carries the optional fields of a partial user update. Nil
// pointers leave the current value untouched.
type UserUpdate struct {
	Username *string
	Password *string
	IsAdmin  *bool
}

// isDuplicateErr detects a unique-constraint violation across sqlite and
// postgres without depending on driver error types.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}

// Create registers a new account. The raw password is hashed with bcrypt and
// never stored.
func (s *UserService) Create(username, password string, isAdmin bool) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.User{Username: username, PasswordHash: string(hash), IsAdmin: isAdmin}
	if err := s.db.Create(&user).Error; err != nil {
		if isDuplicateErr(err) {
			// lost the race against a concurrent registration
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate verifies credentials and returns the matching user.
func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// Get returns the user by id.
func (s *UserService) Get(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List returns a page of users, newest first.
func (s *UserService) List(page, perPage int) ([]models.User, int64, int, error) {
	page, perPage = normalizePage(page, perPage)
	var total int64
	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}
	users := []models.User{}
	if err := s.db.
		Order("created_at desc, id desc").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&users).Error; err != nil {
		return nil, 0, 0, err
	}
	return users, total, totalPages(total, perPage), nil
}

// Update applies a partial update; only non-nil fields change.
func (s *UserService) Update(id uint, upd UserUpdate) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if upd.Username != nil {
		name := strings.TrimSpace(*upd.Username)
		if name == "" {
			return nil, ErrInvalidInput
		}
		if name != user.Username {
			var count int64
			if err := s.db.Model(&models.User{}).Where("username = ?", name).Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, ErrUsernameTaken
			}
			user.Username = name
		}
	}
	if upd.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if upd.IsAdmin != nil {
		user.IsAdmin = *upd.IsAdmin
	}
	if err := s.db.Save(&user).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &user, nil
}

// Delete removes the user and cascades over their notifications and the
// attachments of those notifications. Rows go in one transaction; files are
// removed afterwards, where a missing file is not an error.
func (s *UserService) Delete(id uint) error {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	var attachments []models.Attachment
	if err := s.db.
		Joins("JOIN notifications ON notifications.id = attachments.notification_id").
		Where("notifications.author_id = ?", id).
		Find(&attachments).Error; err != nil {
		return err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(attachments) > 0 {
			ids := make([]uint, 0, len(attachments))
			for _, a := range attachments {
				ids = append(ids, a.ID)
			}
			if err := tx.Delete(&models.Attachment{}, ids).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return err
	}
	for _, a := range attachments {
		_ = os.Remove(a.FilePath)
	}
	return nil
}
