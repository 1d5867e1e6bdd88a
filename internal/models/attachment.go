package models

import "time"

// Attachment is a stored upload. NotificationID is nullable: a file may be
// uploaded first and linked to a notification later. Filename is the
// generated on-disk name; OriginalFilename is the sanitized upload name used
// for Content-Disposition on download.
type Attachment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	NotificationID   *uint     `gorm:"index" json:"notification_id"`
	Filename         string    `gorm:"size:255;uniqueIndex;not null" json:"filename"`
	OriginalFilename string    `gorm:"size:255;not null" json:"original_filename"`
	FilePath         string    `gorm:"size:500;not null" json:"file_path"`
	FileSize         int64     `gorm:"not null" json:"file_size"`
	MimeType         string    `gorm:"size:100;not null" json:"mime_type"`
	UploadedAt       time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}
