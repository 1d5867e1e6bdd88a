package models

import "time"

// User is an account able to authenticate against the API. Only admins can
// author notifications or manage attachments.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsAdmin      bool      `gorm:"not null" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Notifications []Notification `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}
