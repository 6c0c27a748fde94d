package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type Token struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	RefreshToken uuid.UUID `json:"refresh_token" gorm:"type:uuid;not null"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
