package services

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"noticeboard/internal/models"
)

// allowedExtensions is the fixed upload allow-list: documents, images,
// audio, video and common archives. Checked case-insensitively before
// anything touches storage.
var allowedExtensions = map[string]struct{}{
	"txt": {}, "pdf": {}, "png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "webp": {}, "svg": {},
	"mp4": {}, "avi": {}, "mov": {}, "wmv": {}, "flv": {}, "webm": {},
	"mp3": {}, "wav": {}, "ogg": {}, "aac": {},
	"doc": {}, "docx": {}, "xls": {}, "xlsx": {}, "ppt": {}, "pptx": {},
	"zip": {}, "rar": {}, "7z": {}, "tar": {}, "gz": {},
}

// AllowedFile reports whether the filename carries an allowed extension.
func AllowedFile(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return false
	}
	_, ok := allowedExtensions[ext]
	return ok
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFilename strips path components and unsafe characters from an
// uploaded name, keeping it usable as a Content-Disposition filename.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, `/`))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "file"
	}
	return name
}

// AttachmentService is the attachment store: upload validation, file
// persistence and metadata bookkeeping.
type AttachmentService struct {
	db      *gorm.DB
	dir     string
	maxSize int64
}

func NewAttachmentService(db *gorm.DB, dir string, maxSize int64) *AttachmentService {
	return &AttachmentService{db: db, dir: dir, maxSize: maxSize}
}

// Dir returns the storage directory.
func (s *AttachmentService) Dir() string { return s.dir }

// Upload validates and stores one file. Validation order: name present,
// extension allowed, size within the cap, referenced notification exists.
// The file is written first and metadata committed second, so a crash in
// between leaks a file rather than corrupting the store.
func (s *AttachmentService) Upload(file io.Reader, originalName, declaredMime string, size int64, notificationID *uint) (*models.Attachment, error) {
	if strings.TrimSpace(originalName) == "" {
		return nil, ErrInvalidInput
	}
	if !AllowedFile(originalName) {
		return nil, ErrUnsupportedType
	}
	if size > s.maxSize {
		return nil, ErrTooLarge
	}
	if notificationID != nil {
		var count int64
		if err := s.db.Model(&models.Notification{}).Where("id = ?", *notificationID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrNotFound
		}
	}

	original := sanitizeFilename(originalName)
	ext := strings.ToLower(filepath.Ext(originalName))
	stored := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, stored)

	out, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	// LimitReader guards against senders lying about the size.
	written, err := io.Copy(out, io.LimitReader(file, s.maxSize+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	if written > s.maxSize {
		_ = os.Remove(path)
		return nil, ErrTooLarge
	}

	if declaredMime == "" {
		declaredMime = "application/octet-stream"
	}
	att := models.Attachment{
		NotificationID:   notificationID,
		Filename:         stored,
		OriginalFilename: original,
		FilePath:         path,
		FileSize:         written,
		MimeType:         declaredMime,
	}
	if err := s.db.Create(&att).Error; err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return &att, nil
}

// Download resolves a stored filename to its metadata. Metadata without a
// backing file is the distinct ErrFileRemoved case.
func (s *AttachmentService) Download(filename string) (*models.Attachment, error) {
	var att models.Attachment
	if err := s.db.Where("filename = ?", filename).First(&att).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := os.Stat(att.FilePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFileRemoved
		}
		return nil, err
	}
	return &att, nil
}

// Delete removes the file if present, then the metadata row. Deletion is
// idempotent with respect to storage: a missing file is not an error.
func (s *AttachmentService) Delete(id uint) error {
	var att models.Attachment
	if err := s.db.First(&att, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	_ = os.Remove(att.FilePath)
	return s.db.Delete(&models.Attachment{}, id).Error
}

// ListByNotification returns the attachments of one notification, an empty
// slice when it has none, and ErrNotFound when the notification itself is
// absent or hidden from the caller.
func (s *AttachmentService) ListByNotification(notificationID uint, includeUnpublished bool) ([]models.Attachment, error) {
	q := s.db.Model(&models.Notification{}).Where("id = ?", notificationID)
	if !includeUnpublished {
		q = q.Where("is_published = ?", true)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	attachments := []models.Attachment{}
	if err := s.db.Where("notification_id = ?", notificationID).Order("id asc").Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}
