package repository

import (
	"context"
	"time"

	"pos-service/internal/model"
)

// UpsertResult tells how a pushed record was reconciled
type UpsertResult int

const (
	Created UpsertResult = iota
	Updated
	Skipped
)

func (r UpsertResult) String() string {
	switch r {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "skipped"
	}
}

type ProductRepository interface {
	// ChangedSince lists the user's products updated strictly after since (all when nil).
	// A non-empty storeID narrows the result to that store plus unassigned products.
	ChangedSince(ctx context.Context, userID, storeID string, since *time.Time) ([]model.Product, error)
	// Upsert inserts the product when its id is free, otherwise updates the user's row
	// unless the stored copy is newer.
	Upsert(ctx context.Context, product *model.Product) (UpsertResult, error)
}

type TransactionRepository interface {
	ChangedSince(ctx context.Context, userID, storeID string, since *time.Time) ([]model.Transaction, error)
	// InvoiceIndex maps every invoice number of the user to its transaction id
	InvoiceIndex(ctx context.Context, userID string) (map[string]string, error)
	// InsertIfAbsent stores the transaction unless its id or invoice number is taken
	InsertIfAbsent(ctx context.Context, txn *model.Transaction) (bool, error)
	// UpdateReturns replaces the returned-items annotation when the incoming copy is newer
	UpdateReturns(ctx context.Context, txn *model.Transaction) (bool, error)
}

type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	ListByUser(ctx context.Context, userID string) ([]model.Store, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *model.Feedback) error
	ListByUser(ctx context.Context, userID string) ([]model.Feedback, error)
}
