package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a citizen identified by a verified phone number.
type User struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	Phone     string    `gorm:"type:text;uniqueIndex;not null" json:"phone"`
	Language  string    `gorm:"type:text" json:"language"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate is a GORM hook that generates a UUID for the user if ID is not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
