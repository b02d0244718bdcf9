package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"pos-service/internal/localstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)

func newState(t *testing.T) (*State, *localstore.Store) {
	t.Helper()
	store, err := localstore.Open(localstore.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	s := New(store, func() time.Time { return fixedNow })
	require.NoError(t, s.Load(context.Background()))
	return s, store
}

func addProduct(t *testing.T, s *State, id, name string, price, gst float64, qty int) localstore.Product {
	t.Helper()
	p, err := s.Inventory.Add(context.Background(), localstore.Product{
		ID: id, Code: "C-" + id, Name: name, Category: "General",
		Price: price, GSTPercent: gst, Quantity: qty, LowStockThreshold: 2,
	})
	require.NoError(t, err)
	return p
}

func TestInventoryAddFilterAndAlerts(t *testing.T) {
	s, _ := newState(t)
	ctx := context.Background()

	addProduct(t, s, "a", "Basmati Rice", 60, 5, 10)
	addProduct(t, s, "b", "Bath Soap", 25, 18, 1)
	expiry := fixedNow.Add(48 * time.Hour)
	milk, err := s.Inventory.Add(ctx, localstore.Product{ID: "m", Name: "Milk", Category: "Dairy", Price: 30, Quantity: 5, ExpiryDate: &expiry})
	require.NoError(t, err)
	assert.True(t, fixedNow.Equal(milk.UpdatedAt))

	_, err = s.Inventory.Add(ctx, localstore.Product{Name: "Bad", Quantity: -1})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	assert.Len(t, s.Inventory.Products(), 3)
	assert.Len(t, s.Inventory.Filter(ProductFilter{Search: "ba"}), 2)
	assert.Len(t, s.Inventory.Filter(ProductFilter{Category: "dairy"}), 1)

	low := s.Inventory.Filter(ProductFilter{LowStockOnly: true})
	require.Len(t, low, 1)
	assert.Equal(t, "b", low[0].ID)

	assert.Equal(t, []string{"Dairy", "General"}, s.Inventory.Categories())
	assert.Len(t, s.Inventory.FindByCode("C-a"), 1)

	alerts := s.Inventory.Alerts(fixedNow, 72*time.Hour)
	kinds := map[AlertKind]string{}
	for _, a := range alerts {
		kinds[a.Kind] = a.ProductID
	}
	assert.Equal(t, "b", kinds[AlertLowStock])
	assert.Equal(t, "m", kinds[AlertExpiring])

	expired := s.Inventory.Alerts(fixedNow.Add(72*time.Hour), 24*time.Hour)
	found := false
	for _, a := range expired {
		if a.Kind == AlertExpired && a.ProductID == "m" {
			found = true
		}
	}
	assert.True(t, found)

	assert.Equal(t, 775.0, s.Inventory.TotalValue())
}

func TestInventoryAdjustStockNeverNegative(t *testing.T) {
	s, store := newState(t)
	ctx := context.Background()
	addProduct(t, s, "a", "Tea", 10, 5, 3)

	_, err := s.Inventory.AdjustStock(ctx, "a", -4)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	p, err := s.Inventory.AdjustStock(ctx, "a", -3)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Quantity)

	stored, err := store.GetProduct(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Quantity)

	_, err = s.Inventory.AdjustStock(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestInventoryUpdateAndDelete(t *testing.T) {
	s, _ := newState(t)
	ctx := context.Background()
	p := addProduct(t, s, "a", "Tea", 10, 5, 3)

	p.Price = 12
	updated, err := s.Inventory.Update(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 12.0, updated.Price)

	_, err = s.Inventory.Update(ctx, localstore.Product{ID: "nope", Name: "X"})
	assert.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, s.Inventory.Delete(ctx, "a"))
	_, ok := s.Inventory.Get("a")
	assert.False(t, ok)
	assert.ErrorIs(t, s.Inventory.Delete(ctx, "a"), ErrProductNotFound)
}

func TestCartTotalsAndStockLimits(t *testing.T) {
	s, _ := newState(t)
	a := addProduct(t, s, "a", "Item A", 10, 18, 5)
	b := addProduct(t, s, "b", "Item B", 5, 0, 1)

	cart := NewCart()
	require.NoError(t, cart.Add(a, 2))
	require.NoError(t, cart.Add(b, 1))
	assert.ErrorIs(t, cart.Add(b, 1), ErrInsufficientStock)

	totals := cart.Totals()
	assert.Equal(t, 25.0, totals.Subtotal)
	assert.Equal(t, 3.6, totals.TaxTotal)
	assert.Equal(t, 28.6, totals.Total)

	assert.ErrorIs(t, cart.SetQuantity("a", 6), ErrInsufficientStock)
	require.NoError(t, cart.SetQuantity("a", 0))
	assert.Len(t, cart.Items(), 1)

	cart.Remove("b")
	assert.True(t, cart.IsEmpty())
}

func TestCheckoutCreatesInvoiceAndDecrementsStock(t *testing.T) {
	s, store := newState(t)
	ctx := context.Background()
	a := addProduct(t, s, "a", "Item A", 10, 18, 5)
	b := addProduct(t, s, "b", "Item B", 5, 0, 1)

	next, err := s.Transactions.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV000001", next)

	require.NoError(t, s.Cart.Add(a, 2))
	require.NoError(t, s.Cart.Add(b, 1))

	txn, err := s.Transactions.Checkout(ctx, s.Cart, CheckoutOptions{PaymentMethod: "upi"})
	require.NoError(t, err)
	assert.Equal(t, "INV000001", txn.InvoiceNumber)
	assert.Equal(t, 28.6, txn.Total)
	assert.Equal(t, "upi", txn.PaymentMethod)
	assert.True(t, s.Cart.IsEmpty())

	got, _ := s.Inventory.Get("a")
	assert.Equal(t, 3, got.Quantity)
	stored, err := store.GetProduct(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Quantity)

	_, err = s.Transactions.Checkout(ctx, s.Cart, CheckoutOptions{})
	assert.ErrorIs(t, err, ErrEmptyCart)

	summary := s.Transactions.Summary(fixedNow.Add(-time.Hour), fixedNow.Add(time.Hour))
	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, 28.6, summary.Revenue)
	assert.Equal(t, 3.6, summary.TaxTotal)
}

func TestCheckoutRollsBackWhenStockRanOut(t *testing.T) {
	s, store := newState(t)
	ctx := context.Background()
	a := addProduct(t, s, "a", "Item A", 10, 0, 2)
	b := addProduct(t, s, "b", "Item B", 5, 0, 2)

	require.NoError(t, s.Cart.Add(a, 2))
	require.NoError(t, s.Cart.Add(b, 2))

	// stock sold elsewhere after the items were carted
	_, err := s.Inventory.AdjustStock(ctx, "b", -1)
	require.NoError(t, err)

	_, err = s.Transactions.Checkout(ctx, s.Cart, CheckoutOptions{})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	stored, err := store.GetProduct(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Quantity)
	count, err := store.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.False(t, s.Cart.IsEmpty())
}

func TestConcurrentCheckoutsGetDistinctInvoices(t *testing.T) {
	s, _ := newState(t)
	ctx := context.Background()
	p := addProduct(t, s, "a", "Item A", 10, 0, 100)

	const n = 5
	var wg sync.WaitGroup
	invoices := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cart := NewCart()
			if err := cart.Add(p, 1); err != nil {
				t.Error(err)
				return
			}
			txn, err := s.Transactions.Checkout(ctx, cart, CheckoutOptions{})
			if err != nil {
				t.Error(err)
				return
			}
			invoices <- txn.InvoiceNumber
		}()
	}
	wg.Wait()
	close(invoices)

	seen := map[string]bool{}
	for inv := range invoices {
		assert.False(t, seen[inv], inv)
		seen[inv] = true
	}
	assert.Len(t, seen, n)
	got, _ := s.Inventory.Get("a")
	assert.Equal(t, 100-n, got.Quantity)
}

func TestInvoiceNumberSkipsTakenNumbers(t *testing.T) {
	s, store := newState(t)
	ctx := context.Background()
	p := addProduct(t, s, "a", "Item A", 10, 0, 10)

	// an invoice pulled from another device already uses the next number
	pulled := localstore.Transaction{ID: "remote", InvoiceNumber: "INV000002", CreatedAt: fixedNow, UpdatedAt: fixedNow}
	require.NoError(t, store.SaveTransaction(ctx, &pulled))

	next, err := s.Transactions.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV000003", next)

	require.NoError(t, s.Cart.Add(p, 1))
	txn, err := s.Transactions.Checkout(ctx, s.Cart, CheckoutOptions{})
	require.NoError(t, err)
	assert.Equal(t, "INV000003", txn.InvoiceNumber)
}

func TestReturnRestocksExactQuantity(t *testing.T) {
	s, store := newState(t)
	ctx := context.Background()
	a := addProduct(t, s, "a", "Item A", 10, 18, 5)

	require.NoError(t, s.Cart.Add(a, 3))
	txn, err := s.Transactions.Checkout(ctx, s.Cart, CheckoutOptions{})
	require.NoError(t, err)

	before, _ := s.Inventory.Get("a")
	require.Equal(t, 2, before.Quantity)

	ret, err := s.Returns.Process(ctx, ReturnRequest{
		TransactionID: txn.ID,
		Items:         []ReturnLine{{ProductID: "a", Quantity: 2}},
		Reason:        "damaged",
	})
	require.NoError(t, err)
	assert.Equal(t, 23.6, ret.RefundAmount)
	assert.Equal(t, localstore.ReturnStatusCompleted, ret.Status)
	assert.Equal(t, txn.InvoiceNumber, ret.InvoiceNumber)

	after, _ := s.Inventory.Get("a")
	assert.Equal(t, before.Quantity+2, after.Quantity)
	stored, err := store.GetProduct(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Quantity)

	annotated, ok := s.Transactions.Get(txn.ID)
	require.True(t, ok)
	require.Len(t, annotated.ReturnedItems, 1)
	assert.Equal(t, 2, annotated.ReturnedItems[0].Quantity)

	items, err := s.Returns.Returnable(ctx, txn.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Remaining)

	_, err = s.Returns.Process(ctx, ReturnRequest{TransactionID: txn.ID, Items: []ReturnLine{{ProductID: "a", Quantity: 2}}})
	assert.ErrorIs(t, err, ErrInvalidReturn)

	unchanged, _ := s.Inventory.Get("a")
	assert.Equal(t, after.Quantity, unchanged.Quantity)
	assert.Len(t, s.Returns.List(), 1)
}

func TestReturnRejectsBadRequests(t *testing.T) {
	s, _ := newState(t)
	ctx := context.Background()
	a := addProduct(t, s, "a", "Item A", 10, 0, 5)
	require.NoError(t, s.Cart.Add(a, 1))
	txn, err := s.Transactions.Checkout(ctx, s.Cart, CheckoutOptions{})
	require.NoError(t, err)

	_, err = s.Returns.Process(ctx, ReturnRequest{TransactionID: "missing", Items: []ReturnLine{{ProductID: "a", Quantity: 1}}})
	assert.ErrorIs(t, err, ErrTransactionMissing)

	_, err = s.Returns.Process(ctx, ReturnRequest{TransactionID: txn.ID, Items: []ReturnLine{{ProductID: "other", Quantity: 1}}})
	assert.ErrorIs(t, err, ErrInvalidReturn)

	_, err = s.Returns.Process(ctx, ReturnRequest{TransactionID: txn.ID, Items: []ReturnLine{{ProductID: "a", Quantity: 0}}})
	assert.ErrorIs(t, err, ErrInvalidReturn)

	_, err = s.Returns.Process(ctx, ReturnRequest{TransactionID: txn.ID})
	assert.ErrorIs(t, err, ErrInvalidReturn)
}

func TestOperators(t *testing.T) {
	s, _ := newState(t)
	ctx := context.Background()

	_, err := s.Operators.Add(ctx, "Cashier@Shop.in", "Asha", RoleCashier, "1234")
	require.NoError(t, err)

	_, err = s.Operators.Add(ctx, "cashier@shop.in", "Other", RoleCashier, "9999")
	assert.ErrorIs(t, err, ErrOperatorExists)

	_, err = s.Operators.Add(ctx, "x@shop.in", "X", RoleCashier, "12")
	assert.Error(t, err)

	_, err = s.Operators.Authenticate(ctx, "cashier@shop.in", "0000")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	op, err := s.Operators.Authenticate(ctx, "cashier@shop.in", "1234")
	require.NoError(t, err)
	assert.Equal(t, "Asha", op.Name)

	current, ok := s.Operators.Current()
	require.True(t, ok)
	assert.Equal(t, "cashier@shop.in", current.Email)

	require.NoError(t, s.Operators.Deactivate(ctx, "cashier@shop.in"))
	_, ok = s.Operators.Current()
	assert.False(t, ok)

	_, err = s.Operators.Authenticate(ctx, "cashier@shop.in", "1234")
	assert.ErrorIs(t, err, ErrOperatorInactive)

	list, err := s.Operators.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
