package model

import "time"

// User is an account that owns tasks. PasswordHash never holds the raw password.
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Username     string `gorm:"size:50;not null;uniqueIndex"`
	Email        string `gorm:"size:100;not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	LastLoginAt  *time.Time
	Tasks        []Task `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
