package models

import (
	"strings"
	"time"
)

type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Email       string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Password    string    `json:"-" gorm:"not null"`
	IsActive    bool      `json:"is_active" gorm:"not null"`
	IsStaff     bool      `json:"is_staff" gorm:"not null"`
	IsSuperuser bool      `json:"is_superuser" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NormalizeEmail trims the address and lower-cases its domain part. The
// local part is left untouched since mailbox names may be case sensitive.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
