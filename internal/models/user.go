package models

import "time"

// User & session models
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"unique;not null;index"`
	PasswordHash string `gorm:"not null"` // bcrypt
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is a DB-backed API token presented via the X-Auth-Token header.
type Session struct {
	Token     string `gorm:"primaryKey;size:64"`
	Username  string `gorm:"not null;index"`
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"index"`
}
