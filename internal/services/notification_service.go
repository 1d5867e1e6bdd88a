package services

import (
	"errors"
	"os"
	"strings"

	"gorm.io/gorm"

	"noticeboard/internal/models"
)

// NotificationService is the notification store: publish-state aware reads,
// filtered pagination and cascading deletes.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// NotificationFilter narrows a listing. PublishedOnly is forced on every
// public read path.
type NotificationFilter struct {
	Priority      string
	Search        string
	PublishedOnly bool
}

// NotificationUpdate carries the optional fields of a partial update. Nil
// pointers leave the current value untouched.
type NotificationUpdate struct {
	Title       *string
	Content     *string
	Priority    *string
	IsPublished *bool
}

// withRelations preloads the author and attachments the way responses embed
// them.
func (s *NotificationService) withRelations() *gorm.DB {
	return s.db.Preload("Author").Preload("Attachments")
}

// List returns one page of notifications ordered by creation time
// descending, plus the total match count and page count. A page beyond the
// last yields an empty slice, not an error.
func (s *NotificationService) List(filter NotificationFilter, page, perPage int) ([]models.Notification, int64, int, error) {
	page, perPage = normalizePage(page, perPage)

	q := s.db.Model(&models.Notification{})
	if filter.PublishedOnly {
		q = q.Where("is_published = ?", true)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + escapeLike(strings.ToLower(search)) + "%"
		q = q.Where(`lower(title) LIKE ? ESCAPE '\' OR lower(content) LIKE ? ESCAPE '\'`, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}
	items := []models.Notification{}
	if err := q.
		Preload("Author").
		Preload("Attachments").
		Order("created_at desc, id desc").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&items).Error; err != nil {
		return nil, 0, 0, err
	}
	return items, total, totalPages(total, perPage), nil
}

// Get returns one notification. On the public path an unpublished row is
// indistinguishable from an absent one.
func (s *NotificationService) Get(id uint, includeUnpublished bool) (*models.Notification, error) {
	q := s.withRelations()
	if !includeUnpublished {
		q = q.Where("is_published = ?", true)
	}
	var n models.Notification
	if err := q.First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// Create persists a new notification. Priority defaults to medium, publish
// state to true.
func (s *NotificationService) Create(title, content, priority string, authorID uint, published *bool) (*models.Notification, error) {
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(content) == "" {
		return nil, ErrInvalidInput
	}
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, ErrInvalidInput
	}
	isPublished := true
	if published != nil {
		isPublished = *published
	}
	n := models.Notification{
		Title:       title,
		Content:     content,
		Priority:    priority,
		AuthorID:    authorID,
		IsPublished: isPublished,
	}
	if err := s.db.Create(&n).Error; err != nil {
		return nil, err
	}
	return s.Get(n.ID, true)
}

// Update applies a partial update; only non-nil fields change. UpdatedAt is
// refreshed regardless of which fields changed. Concurrent updates are
// last-write-wins.
func (s *NotificationService) Update(id uint, upd NotificationUpdate) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if upd.Title != nil {
		if strings.TrimSpace(*upd.Title) == "" {
			return nil, ErrInvalidInput
		}
		n.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Content != nil {
		if strings.TrimSpace(*upd.Content) == "" {
			return nil, ErrInvalidInput
		}
		n.Content = *upd.Content
	}
	if upd.Priority != nil {
		if !models.ValidPriority(*upd.Priority) {
			return nil, ErrInvalidInput
		}
		n.Priority = *upd.Priority
	}
	if upd.IsPublished != nil {
		n.IsPublished = *upd.IsPublished
	}
	// Save writes every column and always touches updated_at.
	if err := s.db.Save(&n).Error; err != nil {
		return nil, err
	}
	return s.Get(id, true)
}

// Delete removes the notification and its attachments. Rows go in one
// transaction; files are removed after commit, where a missing file is not
// an error.
func (s *NotificationService) Delete(id uint) error {
	var n models.Notification
	if err := s.db.First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	var attachments []models.Attachment
	if err := s.db.Where("notification_id = ?", id).Find(&attachments).Error; err != nil {
		return err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("notification_id = ?", id).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Notification{}, id).Error
	})
	if err != nil {
		return err
	}
	for _, a := range attachments {
		_ = os.Remove(a.FilePath)
	}
	return nil
}
