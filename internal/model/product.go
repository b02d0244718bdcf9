package model

import (
	"time"

	"pos-service/pkg/syncapi"
)

// Product is the server copy of a device inventory item.
// Timestamps come from the device and are never touched by GORM.
type Product struct {
	ID                string     `json:"id" gorm:"primaryKey;type:varchar(64)"`
	UserID            string     `json:"userId" gorm:"type:varchar(64);index;not null"`
	StoreID           string     `json:"storeId" gorm:"type:varchar(64);index"`
	Code              string     `json:"code" gorm:"type:varchar(64);index"`
	Name              string     `json:"name" gorm:"type:varchar(255);not null"`
	Category          string     `json:"category" gorm:"type:varchar(100)"`
	Quantity          int        `json:"quantity" gorm:"not null;default:0"`
	Unit              string     `json:"unit" gorm:"type:varchar(32)"`
	Price             float64    `json:"price" gorm:"not null;default:0"`
	GSTPercent        float64    `json:"gstPercent" gorm:"column:gst_percent;not null;default:0"`
	LowStockThreshold int        `json:"lowStockThreshold" gorm:"not null;default:0"`
	ExpiryDate        *time.Time `json:"expiryDate,omitempty"`
	Description       string     `json:"description" gorm:"type:text"`
	CreatedAt         time.Time  `json:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt         time.Time  `json:"updatedAt" gorm:"index;autoUpdateTime:false"`
}

// ProductFromAPI builds a server row owned by userID from a pushed product
func ProductFromAPI(userID, storeID string, p syncapi.Product) Product {
	return Product{
		ID:                p.ID,
		UserID:            userID,
		StoreID:           storeID,
		Code:              p.Code,
		Name:              p.Name,
		Category:          p.Category,
		Quantity:          p.Quantity,
		Unit:              p.Unit,
		Price:             p.Price,
		GSTPercent:        p.GSTPercent,
		LowStockThreshold: p.LowStockThreshold,
		ExpiryDate:        p.ExpiryDate,
		Description:       p.Description,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ToAPI converts the row to its wire form
func (p Product) ToAPI() syncapi.Product {
	return syncapi.Product{
		ID:                p.ID,
		Code:              p.Code,
		Name:              p.Name,
		Category:          p.Category,
		Quantity:          p.Quantity,
		Unit:              p.Unit,
		Price:             p.Price,
		GSTPercent:        p.GSTPercent,
		LowStockThreshold: p.LowStockThreshold,
		ExpiryDate:        normalizePtr(p.ExpiryDate),
		Description:       p.Description,
		CreatedAt:         syncapi.Timestamp(p.CreatedAt),
		UpdatedAt:         syncapi.Timestamp(p.UpdatedAt),
	}
}

func normalizePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := syncapi.Timestamp(*t)
	return &v
}
