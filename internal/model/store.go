package model

import (
	"time"

	"pos-service/pkg/syncapi"
)

// Store represents a physical shop owned by an account
type Store struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	UserID    string    `json:"userId" gorm:"type:varchar(64);index;not null"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Address   string    `json:"address" gorm:"type:text"`
	Phone     string    `json:"phone" gorm:"type:varchar(20)"`
	GSTNumber string    `json:"gstNumber" gorm:"column:gst_number;type:varchar(20)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToAPI converts the row to its wire form
func (s Store) ToAPI() syncapi.Store {
	return syncapi.Store{
		ID:        s.ID,
		UserID:    s.UserID,
		Name:      s.Name,
		Address:   s.Address,
		Phone:     s.Phone,
		GSTNumber: s.GSTNumber,
		CreatedAt: syncapi.Timestamp(s.CreatedAt),
	}
}
