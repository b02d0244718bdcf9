// Package state holds the in-memory views the till works with. Each
// container is built over an explicit *localstore.Store and writes through
// to it before updating its own view.
package state

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"pos-service/internal/localstore"
	"pos-service/pkg/syncapi"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Clock returns the current time; tests substitute a fixed one
type Clock func() time.Time

// ProductFilter narrows Inventory.Filter. Empty fields match everything.
type ProductFilter struct {
	Search       string
	Category     string
	LowStockOnly bool
}

type AlertKind string

const (
	AlertLowStock AlertKind = "low_stock"
	AlertExpiring AlertKind = "expiring"
	AlertExpired  AlertKind = "expired"
)

type Alert struct {
	Kind       AlertKind
	ProductID  string
	Name       string
	Quantity   int
	Threshold  int
	ExpiryDate *time.Time
}

type Inventory struct {
	store *localstore.Store
	now   Clock

	mu       sync.RWMutex
	products map[string]localstore.Product
}

func NewInventory(store *localstore.Store, now Clock) *Inventory {
	if now == nil {
		now = syncapi.Now
	}
	return &Inventory{
		store:    store,
		now:      now,
		products: map[string]localstore.Product{},
	}
}

// Load replaces the view with the store's products
func (inv *Inventory) Load(ctx context.Context) error {
	products, err := inv.store.ListProducts(ctx)
	if err != nil {
		return err
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.products = make(map[string]localstore.Product, len(products))
	for _, p := range products {
		inv.products[p.ID] = p
	}
	return nil
}

// Products returns every product sorted by name
func (inv *Inventory) Products() []localstore.Product {
	return inv.Filter(ProductFilter{})
}

func (inv *Inventory) Get(id string) (localstore.Product, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	p, ok := inv.products[id]
	return p, ok
}

func (inv *Inventory) Filter(f ProductFilter) []localstore.Product {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	inv.mu.RLock()
	out := make([]localstore.Product, 0, len(inv.products))
	for _, p := range inv.products {
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.LowStockOnly && !isLowStock(p) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Code), search) &&
			!strings.Contains(strings.ToLower(p.Category), search) {
			continue
		}
		out = append(out, p)
	}
	inv.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Categories lists the distinct non-empty categories in order
func (inv *Inventory) Categories() []string {
	inv.mu.RLock()
	seen := map[string]struct{}{}
	for _, p := range inv.products {
		if p.Category != "" {
			seen[p.Category] = struct{}{}
		}
	}
	inv.mu.RUnlock()

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// FindByCode returns the products scanned or typed in with code
func (inv *Inventory) FindByCode(code string) []localstore.Product {
	var out []localstore.Product
	for _, p := range inv.Products() {
		if p.Code == code {
			out = append(out, p)
		}
	}
	return out
}

// Add stores a new product, assigning an id and timestamps when missing
func (inv *Inventory) Add(ctx context.Context, p localstore.Product) (localstore.Product, error) {
	if err := validateProduct(p); err != nil {
		return p, err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := inv.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	if err := inv.store.SaveProduct(ctx, &p); err != nil {
		return p, err
	}
	inv.put(p)
	return p, nil
}

// Update overwrites an existing product and bumps its updatedAt
func (inv *Inventory) Update(ctx context.Context, p localstore.Product) (localstore.Product, error) {
	if err := validateProduct(p); err != nil {
		return p, err
	}
	existing, err := inv.store.GetProduct(ctx, p.ID)
	if errors.Is(err, localstore.ErrNotFound) {
		return p, ErrProductNotFound
	}
	if err != nil {
		return p, err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = inv.now()

	if err := inv.store.SaveProduct(ctx, &p); err != nil {
		return p, err
	}
	inv.put(p)
	return p, nil
}

// Delete removes the product from this device only; sync never deletes
func (inv *Inventory) Delete(ctx context.Context, id string) error {
	if err := inv.store.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, localstore.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	inv.mu.Lock()
	delete(inv.products, id)
	inv.mu.Unlock()
	return nil
}

// AdjustStock adds delta (negative to remove) to a product's quantity.
// Stock never goes below zero.
func (inv *Inventory) AdjustStock(ctx context.Context, id string, delta int) (localstore.Product, error) {
	var updated localstore.Product
	err := inv.store.WithTx(ctx, func(tx *localstore.Store) error {
		p, err := adjustStock(ctx, tx, id, delta, inv.now())
		updated = p
		return err
	})
	if err != nil {
		return updated, err
	}
	inv.put(updated)
	return updated, nil
}

// Alerts reports low stock and products expired or expiring within window
func (inv *Inventory) Alerts(now time.Time, window time.Duration) []Alert {
	var alerts []Alert
	for _, p := range inv.Products() {
		if isLowStock(p) {
			alerts = append(alerts, Alert{
				Kind:      AlertLowStock,
				ProductID: p.ID,
				Name:      p.Name,
				Quantity:  p.Quantity,
				Threshold: p.LowStockThreshold,
			})
		}
		if p.ExpiryDate == nil {
			continue
		}
		switch {
		case !p.ExpiryDate.After(now):
			alerts = append(alerts, Alert{Kind: AlertExpired, ProductID: p.ID, Name: p.Name, Quantity: p.Quantity, ExpiryDate: p.ExpiryDate})
		case p.ExpiryDate.Before(now.Add(window)):
			alerts = append(alerts, Alert{Kind: AlertExpiring, ProductID: p.ID, Name: p.Name, Quantity: p.Quantity, ExpiryDate: p.ExpiryDate})
		}
	}
	return alerts
}

// TotalValue is the stock value at selling price, excluding GST
func (inv *Inventory) TotalValue() float64 {
	total := decimal.Zero
	for _, p := range inv.Products() {
		total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return total.Round(2).InexactFloat64()
}

func (inv *Inventory) put(p localstore.Product) {
	inv.mu.Lock()
	inv.products[p.ID] = p
	inv.mu.Unlock()
}

func adjustStock(ctx context.Context, tx *localstore.Store, id string, delta int, now time.Time) (localstore.Product, error) {
	p, err := tx.GetProduct(ctx, id)
	if errors.Is(err, localstore.ErrNotFound) {
		return localstore.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	if err != nil {
		return localstore.Product{}, err
	}
	if p.Quantity+delta < 0 {
		return *p, fmt.Errorf("%w: %s has %d", ErrInsufficientStock, p.Name, p.Quantity)
	}
	p.Quantity += delta
	p.UpdatedAt = now
	if err := tx.SaveProduct(ctx, p); err != nil {
		return *p, err
	}
	return *p, nil
}

func isLowStock(p localstore.Product) bool {
	return p.Quantity <= p.LowStockThreshold
}

func validateProduct(p localstore.Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case p.Quantity < 0:
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidProduct)
	case p.Price < 0:
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidProduct)
	case p.GSTPercent < 0 || p.GSTPercent > 100:
		return fmt.Errorf("%w: gst must be between 0 and 100", ErrInvalidProduct)
	case p.LowStockThreshold < 0:
		return fmt.Errorf("%w: low stock threshold cannot be negative", ErrInvalidProduct)
	}
	return nil
}
