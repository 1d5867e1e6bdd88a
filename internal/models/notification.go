package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification priorities. Anything else is rejected at validation time.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidPriority reports whether p is one of the accepted priority values.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Notification is a content item authored by an admin. Unpublished rows are
// drafts: invisible on every non-admin read path.
// Priority and IsPublished defaults are applied by the service layer rather
// than as column defaults, so that an explicit false/empty value survives the
// insert.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Priority    string    `gorm:"size:20;not null" json:"priority"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	IsPublished bool      `gorm:"not null" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Author      User         `gorm:"foreignKey:AuthorID" json:"author"`
	Attachments []Attachment `gorm:"foreignKey:NotificationID;constraint:OnDelete:CASCADE" json:"attachments"`
}

// AfterFind keeps the attachments slice non-nil so responses serialize an
// empty array rather than null.
func (n *Notification) AfterFind(*gorm.DB) error {
	if n.Attachments == nil {
		n.Attachments = []Attachment{}
	}
	return nil
}
