package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a dashboard operator. Operators create projects and confirm renewals.
type User struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	FullName    string    `json:"fullname"`
	Password    string    `json:"-"`
	IsActive    bool      `json:"isActive"`
	LastLoginAt time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when none was set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
