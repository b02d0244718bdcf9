package repository

import (
	"context"
	"testing"
	"time"

	"pos-service/internal/model"
	"pos-service/pkg/database"
	"pos-service/pkg/syncapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	return db
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	repo := NewUserRepository(openDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{Email: "Owner@Shop.in", Name: "Owner", PasswordHash: "x"}))

	err := repo.Create(ctx, &model.User{Email: "owner@shop.in", Name: "Other", PasswordHash: "y"})
	assert.ErrorIs(t, err, ErrDuplicate)

	user, err := repo.GetByEmail(ctx, " OWNER@shop.in ")
	require.NoError(t, err)
	assert.Equal(t, "Owner", user.Name)

	_, err = repo.GetByEmail(ctx, "nobody@shop.in")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreRepositoryListsOwnStores(t *testing.T) {
	repo := NewStoreRepository(openDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Store{UserID: "u1", Name: "A"}))
	require.NoError(t, repo.Create(ctx, &model.Store{UserID: "u1", Name: "B"}))
	require.NoError(t, repo.Create(ctx, &model.Store{UserID: "u2", Name: "C"}))

	stores, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, stores, 2)
	for _, s := range stores {
		assert.NotEmpty(t, s.ID)
	}

	assert.ErrorIs(t, repo.Create(ctx, &model.Store{UserID: "u1"}), ErrInvalidInput)
}

func TestProductUpsertOutcomes(t *testing.T) {
	repo := NewProductRepository(openDB(t))
	ctx := context.Background()
	now := syncapi.Now()

	p := &model.Product{ID: "p1", UserID: "u1", Name: "Tea", Quantity: 5, CreatedAt: now, UpdatedAt: now}
	res, err := repo.Upsert(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, Created, res)

	same := *p
	res, err = repo.Upsert(ctx, &same)
	require.NoError(t, err)
	assert.Equal(t, Updated, res)

	older := *p
	older.UpdatedAt = now.Add(-time.Minute)
	res, err = repo.Upsert(ctx, &older)
	require.NoError(t, err)
	assert.Equal(t, Skipped, res)
	assert.Equal(t, "skipped", res.String())

	negative := *p
	negative.Quantity = -1
	_, err = repo.Upsert(ctx, &negative)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTransactionInsertIfAbsent(t *testing.T) {
	repo := NewTransactionRepository(openDB(t))
	ctx := context.Background()
	now := syncapi.Now()

	txn := &model.Transaction{ID: "t1", UserID: "u1", InvoiceNumber: "INV000001", Total: 10, CreatedAt: now, UpdatedAt: now}
	created, err := repo.InsertIfAbsent(ctx, txn)
	require.NoError(t, err)
	assert.True(t, created)

	dup := &model.Transaction{ID: "t2", UserID: "u1", InvoiceNumber: "INV000001", CreatedAt: now, UpdatedAt: now}
	created, err = repo.InsertIfAbsent(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)

	index, err := repo.InvoiceIndex(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"INV000001": "t1"}, index)
}

func TestFeedbackRatingBounds(t *testing.T) {
	repo := NewFeedbackRepository(openDB(t))
	ctx := context.Background()

	assert.ErrorIs(t, repo.Create(ctx, &model.Feedback{UserID: "u1", Rating: 6}), ErrInvalidInput)
	require.NoError(t, repo.Create(ctx, &model.Feedback{UserID: "u1", Rating: 5, Message: "great"}))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "great", list[0].Message)
}
