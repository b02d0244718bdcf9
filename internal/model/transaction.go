package model

import (
	"time"

	"pos-service/pkg/syncapi"

	"gorm.io/datatypes"
)

// Transaction is an invoice pushed by a device. Totals are stored as sent.
type Transaction struct {
	ID            string                                    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	UserID        string                                    `json:"userId" gorm:"type:varchar(64);not null;uniqueIndex:idx_transactions_user_invoice"`
	StoreID       string                                    `json:"storeId" gorm:"type:varchar(64);index"`
	InvoiceNumber string                                    `json:"invoiceNumber" gorm:"type:varchar(32);not null;uniqueIndex:idx_transactions_user_invoice"`
	Items         datatypes.JSONSlice[syncapi.LineItem]     `json:"items"`
	Subtotal      float64                                   `json:"subtotal"`
	TaxTotal      float64                                   `json:"taxTotal"`
	Total         float64                                   `json:"total"`
	PaymentMethod string                                    `json:"paymentMethod" gorm:"type:varchar(32)"`
	CustomerName  string                                    `json:"customerName" gorm:"type:varchar(255)"`
	ReturnedItems datatypes.JSONSlice[syncapi.ReturnedItem] `json:"returnedItems"`
	CreatedAt     time.Time                                 `json:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt     time.Time                                 `json:"updatedAt" gorm:"index;autoUpdateTime:false"`
}

// TransactionFromAPI builds a server row owned by userID from a pushed invoice
func TransactionFromAPI(userID, storeID string, t syncapi.Transaction) Transaction {
	updated := t.UpdatedAt
	if updated.IsZero() {
		updated = t.CreatedAt
	}
	return Transaction{
		ID:            t.ID,
		UserID:        userID,
		StoreID:       storeID,
		InvoiceNumber: t.InvoiceNumber,
		Items:         datatypes.NewJSONSlice(t.Items),
		Subtotal:      t.Subtotal,
		TaxTotal:      t.TaxTotal,
		Total:         t.Total,
		PaymentMethod: t.PaymentMethod,
		CustomerName:  t.CustomerName,
		ReturnedItems: datatypes.NewJSONSlice(t.ReturnedItems),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     updated,
	}
}

// ToAPI converts the row to its wire form
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
