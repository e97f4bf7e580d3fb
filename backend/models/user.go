package models

import (
	"time"

	"gorm.io/datatypes"
)

// User is an identity row. The ID is an opaque uuid issued at registration
// and never changes.
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;not null"`
	Name         string `gorm:"not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileRecord holds one profile document per identity. The document itself
// is a JSON blob so its shape can evolve without schema migrations; see
// ProfileDocument for the canonical layout.
type ProfileRecord struct {
	UserID    string         `gorm:"primaryKey;size:36"`
	Document  datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type LoginHistory struct {
	ID        uint `gorm:"primaryKey"`
	UserID    string
	LoginTime time.Time
}
