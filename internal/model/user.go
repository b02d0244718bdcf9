package model

import (
	"time"

	"pos-service/pkg/syncapi"
)

// User represents a business account that owns stores and synced records
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	BusinessName string    `json:"businessName" gorm:"type:varchar(255)"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ToAPI returns the public account view
func (u User) ToAPI() syncapi.Account {
	return syncapi.Account{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		BusinessName: u.BusinessName,
	}
}
