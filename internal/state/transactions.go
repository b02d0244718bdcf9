package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pos-service/internal/localstore"
	"pos-service/internal/pos"
	"pos-service/pkg/syncapi"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type CheckoutOptions struct {
	PaymentMethod string
	CustomerName  string
}

// Summary aggregates sales over a period
type Summary struct {
	Count    int
	Revenue  float64
	TaxTotal float64
	Refunds  float64
}

type Transactions struct {
	store     *localstore.Store
	inventory *Inventory
	now       Clock

	// checkout serializes invoice numbering within this process
	checkout sync.Mutex

	mu   sync.RWMutex
	list []localstore.Transaction
}

func NewTransactions(store *localstore.Store, inventory *Inventory, now Clock) *Transactions {
	if now == nil {
		now = syncapi.Now
	}
	return &Transactions{store: store, inventory: inventory, now: now}
}

func (t *Transactions) Load(ctx context.Context) error {
	list, err := t.store.ListTransactions(ctx)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.list = list
	t.mu.Unlock()
	return nil
}

// List returns transactions oldest first
func (t *Transactions) List() []localstore.Transaction {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]localstore.Transaction, len(t.list))
	copy(out, t.list)
	return out
}

func (t *Transactions) Get(id string) (localstore.Transaction, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, txn := range t.list {
		if txn.ID == id {
			return txn, true
		}
	}
	return localstore.Transaction{}, false
}

// Between returns transactions created in [from, to)
func (t *Transactions) Between(from, to time.Time) []localstore.Transaction {
	var out []localstore.Transaction
	for _, txn := range t.List() {
		if !txn.CreatedAt.Before(from) && txn.CreatedAt.Before(to) {
			out = append(out, txn)
		}
	}
	return out
}

// NextInvoiceNumber previews the number the next checkout will use
func (t *Transactions) NextInvoiceNumber(ctx context.Context) (string, error) {
	return nextInvoiceNumber(ctx, t.store)
}

// Checkout turns the cart into an invoice. Stock is decremented and the
// invoice written in one local transaction; the cart is cleared on success.
func (t *Transactions) Checkout(ctx context.Context, cart *Cart, opts CheckoutOptions) (*localstore.Transaction, error) {
	t.checkout.Lock()
	defer t.checkout.Unlock()

	lines := cart.LineItems()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	now := t.now()
	totals := pos.CalculateTotals(lines)
	txn := localstore.Transaction{
		ID:            uuid.New().String(),
		Items:         datatypes.NewJSONSlice(lines),
		Subtotal:      totals.Subtotal,
		TaxTotal:      totals.TaxTotal,
		Total:         totals.Total,
		PaymentMethod: opts.PaymentMethod,
		CustomerName:  opts.CustomerName,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if txn.PaymentMethod == "" {
		txn.PaymentMethod = "cash"
	}

	var touched []localstore.Product
	err := t.store.WithTx(ctx, func(tx *localstore.Store) error {
		invoice, err := nextInvoiceNumber(ctx, tx)
		if err != nil {
			return err
		}
		txn.InvoiceNumber = invoice

		for _, line := range lines {
			p, err := adjustStock(ctx, tx, line.ProductID, -line.Quantity, now)
			if err != nil {
				return err
			}
			touched = append(touched, p)
		}
		return tx.CreateTransaction(ctx, &txn)
	})
	if err != nil {
		return nil, fmt.Errorf("checkout failed: %w", err)
	}

	for _, p := range touched {
		t.inventory.put(p)
	}
	t.mu.Lock()
	t.list = append(t.list, txn)
	t.mu.Unlock()
	cart.Clear()

	return &txn, nil
}

// Summary totals the sales and refunds created in [from, to)
func (t *Transactions) Summary(from, to time.Time) Summary {
	revenue := decimal.Zero
	tax := decimal.Zero
	refunds := decimal.Zero
	var s Summary

	for _, txn := range t.Between(from, to) {
		s.Count++
		revenue = revenue.Add(decimal.NewFromFloat(txn.Total))
		tax = tax.Add(decimal.NewFromFloat(txn.TaxTotal))
		for _, r := range txn.ReturnedItems {
			refunds = refunds.Add(decimal.NewFromFloat(r.Refund))
		}
	}

	s.Revenue = revenue.Round(2).InexactFloat64()
	s.TaxTotal = tax.Round(2).InexactFloat64()
	s.Refunds = refunds.Round(2).InexactFloat64()
	return s
}

func (t *Transactions) replace(txn localstore.Transaction) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.list {
		if t.list[i].ID == txn.ID {
			t.list[i] = txn
			return
		}
	}
	t.list = append(t.list, txn)
}

// nextInvoiceNumber starts from count+1 and skips numbers already taken,
// e.g. by invoices pulled from another device.
func nextInvoiceNumber(ctx context.Context, store *localstore.Store) (string, error) {
	count, err := store.CountTransactions(ctx)
	if err != nil {
		return "", err
	}
	for n := count; ; n++ {
		invoice := pos.NextInvoiceNumber(n)
		exists, err := store.InvoiceExists(ctx, invoice)
		if err != nil {
			return "", err
		}
		if !exists {
			return invoice, nil
		}
	}
}
