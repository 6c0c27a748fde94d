package models

import (
	"time"
)

type User struct {
	ID          uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Email       string `json:"email" gorm:"unique;not null"`
	Password    string `json:"-" gorm:"not null"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`
	IsSuperuser bool   `json:"is_superuser" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tasks []Task `json:"tasks,omitempty" gorm:"foreignKey:OwnerID"`
}
