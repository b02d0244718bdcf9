// Package syncapi holds the JSON request and response types exchanged between
// POS devices and the sync server. Field tags carry the validation rules the
// server enforces at the boundary.
package syncapi

import "time"

// Product is the wire representation of an inventory item
type Product struct {
	ID                string     `json:"id" validate:"required,max=64"`
	Code              string     `json:"code" validate:"max=64"`
	Name              string     `json:"name" validate:"required,max=255"`
	Category          string     `json:"category" validate:"max=100"`
	Quantity          int        `json:"quantity" validate:"gte=0"`
	Unit              string     `json:"unit" validate:"max=32"`
	Price             float64    `json:"price" validate:"gte=0"`
	GSTPercent        float64    `json:"gstPercent" validate:"gte=0,lte=100"`
	LowStockThreshold int        `json:"lowStockThreshold" validate:"gte=0"`
	ExpiryDate        *time.Time `json:"expiryDate,omitempty"`
	Description       string     `json:"description"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// LineItem is a product snapshot and quantity captured at sale time
type LineItem struct {
	ProductID  string  `json:"productId" validate:"required,max=64"`
	Code       string  `json:"code"`
	Name       string  `json:"name" validate:"required"`
	Unit       string  `json:"unit"`
	Price      float64 `json:"price" validate:"gte=0"`
	GSTPercent float64 `json:"gstPercent" validate:"gte=0,lte=100"`
	Quantity   int     `json:"quantity" validate:"gt=0"`
}

// ReturnedItem annotates a transaction with quantities taken back by a return
type ReturnedItem struct {
	ReturnID   string    `json:"returnId"`
	ProductID  string    `json:"productId" validate:"required"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity" validate:"gt=0"`
	Refund     float64   `json:"refund" validate:"gte=0"`
	ReturnedAt time.Time `json:"returnedAt"`
}

// Transaction is an invoice as stored on a device
type Transaction struct {
	ID            string         `json:"id" validate:"required,max=64"`
	InvoiceNumber string         `json:"invoiceNumber" validate:"required,max=32"`
	Items         []LineItem     `json:"items" validate:"required,min=1,dive"`
	Subtotal      float64        `json:"subtotal" validate:"gte=0"`
	TaxTotal      float64        `json:"taxTotal" validate:"gte=0"`
	Total         float64        `json:"total" validate:"gte=0"`
	PaymentMethod string         `json:"paymentMethod"`
	CustomerName  string         `json:"customerName"`
	ReturnedItems []ReturnedItem `json:"returnedItems,omitempty" validate:"omitempty,dive"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// PullRequest asks for everything changed after LastSyncAt.
// A nil LastSyncAt pulls every record of the user.
type PullRequest struct {
	UserID     string     `json:"userId" validate:"required,max=64"`
	LastSyncAt *time.Time `json:"lastSyncAt"`
	StoreID    string     `json:"storeId,omitempty" validate:"max=64"`
}

// PullResponse carries the changed records and the new watermark
type PullResponse struct {
	Products     []Product     `json:"products"`
	Transactions []Transaction `json:"transactions"`
	SyncedAt     time.Time     `json:"syncedAt"`
}

// PushRequest submits every local record of a device
type PushRequest struct {
	UserID       string        `json:"userId" validate:"required,max=64"`
	Products     []Product     `json:"products" validate:"dive"`
	Transactions []Transaction `json:"transactions" validate:"dive"`
	StoreID      string        `json:"storeId,omitempty" validate:"max=64"`
}

// PushResults counts how each pushed record was reconciled
type PushResults struct {
	ProductsCreated     int `json:"productsCreated"`
	ProductsUpdated     int `json:"productsUpdated"`
	ProductsSkipped     int `json:"productsSkipped"`
	TransactionsCreated int `json:"transactionsCreated"`
	TransactionsUpdated int `json:"transactionsUpdated"`
	TransactionsSkipped int `json:"transactionsSkipped"`
}

// PushResponse is returned by a successful push
type PushResponse struct {
	Success  bool        `json:"success"`
	Results  PushResults `json:"results"`
	SyncedAt time.Time   `json:"syncedAt"`
}

// RegisterRequest creates a server account
type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	Name         string `json:"name" validate:"required"`
	BusinessName string `json:"businessName"`
}

// LoginRequest exchanges credentials for a bearer token
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Account is the public view of a server account
type Account struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	BusinessName string `json:"businessName"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string  `json:"token"`
	User  Account `json:"user"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Store is a shop registered under an account
type Store struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	GSTNumber string    `json:"gstNumber"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateStoreRequest registers a store. UserID defaults to the caller.
type CreateStoreRequest struct {
	UserID    string `json:"userId" validate:"max=64"`
	Name      string `json:"name" validate:"required,max=255"`
	Address   string `json:"address"`
	Phone     string `json:"phone" validate:"max=20"`
	GSTNumber string `json:"gstNumber" validate:"max=20"`
}

// StoresResponse lists the stores of an account
type StoresResponse struct {
	Stores []Store `json:"stores"`
}

// StoreResponse wraps a single created store
type StoreResponse struct {
	Store Store `json:"store"`
}

// FeedbackRequest submits a rating and optional message
type FeedbackRequest struct {
	UserID  string `json:"userId" validate:"max=64"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Message string `json:"message" validate:"max=2000"`
}
