package models

import "time"

// PasswordReset is a single-use token mailed to a user who forgot their
// password. Consumed (UsedAt set) exactly once.
type PasswordReset struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"index;size:255;not null"`
	Token     string    `gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (PasswordReset) TableName() string { return "password_resets" }
