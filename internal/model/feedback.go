package model

import "time"

// Feedback is a rating and message left by an account
type Feedback struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	UserID    string    `json:"userId" gorm:"type:varchar(64);index;not null"`
	Rating    int       `json:"rating" gorm:"not null"`
	Message   string    `json:"message" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt"`
}

// All returns every model migrated by the server
func All() []interface{} {
	return []interface{}{
		&User{},
		&Store{},
		&Product{},
		&Transaction{},
		&Feedback{},
	}
}
