package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User mirrors the identity provider's user record; credentials live with the provider.
type User struct {
	UserID string `gorm:"type:varchar(36);primaryKey" json:"userId"`
	Name   string `gorm:"size:150;not null" json:"name"`
	Email  string `gorm:"size:150;uniqueIndex;not null" json:"email"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = uuid.NewString()
	}
	return nil
}
