package localstore

import (
	"time"

	"pos-service/pkg/syncapi"

	"gorm.io/datatypes"
)

// Operator is a person allowed to use the till, keyed by email
type Operator struct {
	Email     string    `gorm:"primaryKey;type:varchar(255)"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Role      string    `gorm:"type:varchar(32);not null"`
	PinHash   string    `gorm:"type:varchar(255);not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
}

// Product is the device copy of an inventory item
type Product struct {
	ID                string     `gorm:"primaryKey;type:varchar(64)"`
	Code              string     `gorm:"type:varchar(64);index"`
	Name              string     `gorm:"type:varchar(255);not null"`
	Category          string     `gorm:"type:varchar(100);index"`
	Quantity          int        `gorm:"not null;default:0"`
	Unit              string     `gorm:"type:varchar(32)"`
	Price             float64    `gorm:"not null;default:0"`
	GSTPercent        float64    `gorm:"column:gst_percent"`
	LowStockThreshold int        `gorm:"not null;default:0"`
	ExpiryDate        *time.Time `gorm:"index"`
	Description       string     `gorm:"type:text"`
	CreatedAt         time.Time  `gorm:"autoCreateTime:false"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime:false"`
}

// Transaction is a completed invoice
type Transaction struct {
	ID            string                                    `gorm:"primaryKey;type:varchar(64)"`
	InvoiceNumber string                                    `gorm:"type:varchar(32);uniqueIndex;not null"`
	Items         datatypes.JSONSlice[syncapi.LineItem]     `gorm:"not null"`
	Subtotal      float64                                   `gorm:"not null"`
	TaxTotal      float64                                   `gorm:"not null"`
	Total         float64                                   `gorm:"not null"`
	PaymentMethod string                                    `gorm:"type:varchar(32)"`
	CustomerName  string                                    `gorm:"type:varchar(255)"`
	ReturnedItems datatypes.JSONSlice[syncapi.ReturnedItem] `gorm:"column:returned_items"`
	CreatedAt     time.Time                                 `gorm:"index;autoCreateTime:false"`
	UpdatedAt     time.Time                                 `gorm:"autoUpdateTime:false"`
}

// ReturnLine is one product taken back in a return
type ReturnLine struct {
	ProductID  string  `json:"productId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	GSTPercent float64 `json:"gstPercent"`
	Refund     float64 `json:"refund"`
}

const ReturnStatusCompleted = "completed"

// Return records goods taken back against a transaction
type Return struct {
	ID            string                          `gorm:"primaryKey;type:varchar(64)"`
	TransactionID string                          `gorm:"type:varchar(64);index;not null"`
	InvoiceNumber string                          `gorm:"type:varchar(32)"`
	Items         datatypes.JSONSlice[ReturnLine] `gorm:"not null"`
	RefundAmount  float64                         `gorm:"not null"`
	Reason        string                          `gorm:"type:text"`
	Status        string                          `gorm:"type:varchar(16);not null"`
	CreatedAt     time.Time                       `gorm:"index;autoCreateTime:false"`
}

// Setting is a key/value pair such as the sync watermark
type Setting struct {
	Key   string `gorm:"primaryKey;type:varchar(255)"`
	Value string
}

func models() []interface{} {
	return []interface{}{&Operator{}, &Product{}, &Transaction{}, &Return{}, &Setting{}}
}

// ProductFromAPI converts a pulled product to its local form
func ProductFromAPI(p syncapi.Product) Product {
	return Product{
		ID:                p.ID,
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
		CreatedAt:         syncapi.Timestamp(p.CreatedAt),
		UpdatedAt:         syncapi.Timestamp(p.UpdatedAt),
	}
}

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
		ExpiryDate:        p.ExpiryDate,
		Description:       p.Description,
		CreatedAt:         syncapi.Timestamp(p.CreatedAt),
		UpdatedAt:         syncapi.Timestamp(p.UpdatedAt),
	}
}

// TransactionFromAPI converts a pulled transaction to its local form
func TransactionFromAPI(t syncapi.Transaction) Transaction {
	return Transaction{
		ID:            t.ID,
		InvoiceNumber: t.InvoiceNumber,
		Items:         datatypes.NewJSONSlice(t.Items),
		Subtotal:      t.Subtotal,
		TaxTotal:      t.TaxTotal,
		Total:         t.Total,
		PaymentMethod: t.PaymentMethod,
		CustomerName:  t.CustomerName,
		ReturnedItems: datatypes.NewJSONSlice(t.ReturnedItems),
		CreatedAt:     syncapi.Timestamp(t.CreatedAt),
		UpdatedAt:     syncapi.Timestamp(t.UpdatedAt),
	}
}

func (t Transaction) ToAPI() syncapi.Transaction {
	return syncapi.Transaction{
		ID:            t.ID,
		InvoiceNumber: t.InvoiceNumber,
		Items:         []syncapi.LineItem(t.Items),
		Subtotal:      t.Subtotal,
		TaxTotal:      t.TaxTotal,
		Total:         t.Total,
		PaymentMethod: t.PaymentMethod,
		CustomerName:  t.CustomerName,
		ReturnedItems: []syncapi.ReturnedItem(t.ReturnedItems),
		CreatedAt:     syncapi.Timestamp(t.CreatedAt),
		UpdatedAt:     syncapi.Timestamp(t.UpdatedAt),
	}
}
