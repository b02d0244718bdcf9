package localstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pos-service/pkg/syncapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUninitializedStore(t *testing.T) {
	ctx := context.Background()
	var s *Store

	_, err := s.ListProducts(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, s.SetSetting(ctx, "k", "v"), ErrNotInitialized)
	assert.ErrorIs(t, (&Store{}).WithTx(ctx, func(*Store) error { return nil }), ErrNotInitialized)
}

func TestProductSaveOverwritesByID(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	now := syncapi.Now()

	require.NoError(t, s.SaveProduct(ctx, &Product{ID: "p1", Code: "8901", Name: "Soap", Quantity: 3, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, s.SaveProduct(ctx, &Product{ID: "p2", Code: "8901", Name: "Soap Large", Quantity: 1, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, s.SaveProduct(ctx, &Product{ID: "p1", Code: "8901", Name: "Soap", Quantity: 9, CreatedAt: now, UpdatedAt: now.Add(time.Second)}))

	p, err := s.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 9, p.Quantity)
	assert.True(t, now.Add(time.Second).Equal(p.UpdatedAt))

	byCode, err := s.FindProductsByCode(ctx, "8901")
	require.NoError(t, err)
	assert.Len(t, byCode, 2)

	require.NoError(t, s.DeleteProduct(ctx, "p2"))
	assert.ErrorIs(t, s.DeleteProduct(ctx, "p2"), ErrNotFound)
	_, err = s.GetProduct(ctx, "p2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransactionInvoiceNumberIsUnique(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	now := syncapi.Now()
	items := datatypes.NewJSONSlice([]syncapi.LineItem{{ProductID: "p1", Name: "Soap", Price: 10, Quantity: 1}})

	require.NoError(t, s.CreateTransaction(ctx, &Transaction{ID: "t1", InvoiceNumber: "INV000001", Items: items, CreatedAt: now, UpdatedAt: now}))
	err := s.CreateTransaction(ctx, &Transaction{ID: "t2", InvoiceNumber: "INV000001", Items: items, CreatedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, ErrDuplicate)

	count, err := s.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	exists, err := s.InvoiceExists(ctx, "INV000001")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := s.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Soap", got.Items[0].Name)
}

func TestOperatorEmailIsUnique(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateOperator(ctx, &Operator{Email: "a@shop.in", Name: "A", Role: "cashier", PinHash: "h", Active: true}))
	assert.ErrorIs(t, s.CreateOperator(ctx, &Operator{Email: "a@shop.in", Name: "B", Role: "cashier", PinHash: "h"}), ErrDuplicate)
}

func TestSettings(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, ok, err := s.GetSetting(ctx, "sync.lastSyncAt.u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetSetting(ctx, "sync.lastSyncAt.u1", "a"))
	require.NoError(t, s.SetSetting(ctx, "sync.lastSyncAt.u1", "b"))

	v, ok, err := s.GetSetting(ctx, "sync.lastSyncAt.u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestWithTxRollsBack(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	now := syncapi.Now()

	err := s.WithTx(ctx, func(tx *Store) error {
		require.NoError(t, tx.SaveProduct(ctx, &Product{ID: "p1", Name: "Tea", CreatedAt: now, UpdatedAt: now}))
		return ErrDuplicate
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = s.GetProduct(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetSetting(context.Background(), "k", "v"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.GetSetting(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}
