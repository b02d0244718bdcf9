package state

import (
	"fmt"
	"sync"

	"pos-service/internal/localstore"
	"pos-service/internal/pos"
	"pos-service/pkg/syncapi"
)

// CartItem is a product snapshot taken when it was added, with a quantity
type CartItem struct {
	Product  localstore.Product
	Quantity int
}

// LineItem snapshots the item as it will appear on the invoice
func (ci CartItem) LineItem() syncapi.LineItem {
	return syncapi.LineItem{
		ProductID:  ci.Product.ID,
		Code:       ci.Product.Code,
		Name:       ci.Product.Name,
		Unit:       ci.Product.Unit,
		Price:      ci.Product.Price,
		GSTPercent: ci.Product.GSTPercent,
		Quantity:   ci.Quantity,
	}
}

// Cart is the sale being rung up. Items keep the order they were added in.
type Cart struct {
	mu    sync.RWMutex
	items []CartItem
}

func NewCart() *Cart {
	return &Cart{}
}

// Add puts qty units of product in the cart, merging with an existing line
func (c *Cart) Add(product localstore.Product, qty int) error {
	if qty <= 0 {
		return pos.ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].Product.ID == product.ID {
			want := c.items[i].Quantity + qty
			if want > product.Quantity {
				return fmt.Errorf("%w: only %d of %s available", ErrInsufficientStock, product.Quantity, product.Name)
			}
			c.items[i].Product = product
			c.items[i].Quantity = want
			return nil
		}
	}

	if qty > product.Quantity {
		return fmt.Errorf("%w: only %d of %s available", ErrInsufficientStock, product.Quantity, product.Name)
	}
	c.items = append(c.items, CartItem{Product: product, Quantity: qty})
	return nil
}

// SetQuantity changes a line's quantity; zero removes the line
func (c *Cart) SetQuantity(productID string, qty int) error {
	if qty < 0 {
		return pos.ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].Product.ID != productID {
			continue
		}
		if qty == 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
		if qty > c.items[i].Product.Quantity {
			return fmt.Errorf("%w: only %d of %s available", ErrInsufficientStock, c.items[i].Product.Quantity, c.items[i].Product.Name)
		}
		c.items[i].Quantity = qty
		return nil
	}
	return ErrProductNotFound
}

func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

func (c *Cart) Items() []CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items) == 0
}

// LineItems returns the invoice lines for the current cart
func (c *Cart) LineItems() []syncapi.LineItem {
	items := c.Items()
	lines := make([]syncapi.LineItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.LineItem())
	}
	return lines
}

func (c *Cart) Totals() pos.Totals {
	return pos.CalculateTotals(c.LineItems())
}
