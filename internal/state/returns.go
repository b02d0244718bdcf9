package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pos-service/internal/localstore"
	"pos-service/internal/pos"
	"pos-service/pkg/syncapi"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ReturnLine struct {
	ProductID string
	Quantity  int
}

type ReturnRequest struct {
	TransactionID string
	Items         []ReturnLine
	Reason        string
}

// ReturnableItem is what is left to return of one invoice line
type ReturnableItem struct {
	ProductID  string
	Name       string
	Price      float64
	GSTPercent float64
	Sold       int
	Returned   int
	Remaining  int
}

type Returns struct {
	store        *localstore.Store
	inventory    *Inventory
	transactions *Transactions
	now          Clock

	mu   sync.RWMutex
	list []localstore.Return
}

func NewReturns(store *localstore.Store, inventory *Inventory, transactions *Transactions, now Clock) *Returns {
	if now == nil {
		now = syncapi.Now
	}
	return &Returns{store: store, inventory: inventory, transactions: transactions, now: now}
}

func (r *Returns) Load(ctx context.Context) error {
	list, err := r.store.ListReturns(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.list = list
	r.mu.Unlock()
	return nil
}

func (r *Returns) List() []localstore.Return {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]localstore.Return, len(r.list))
	copy(out, r.list)
	return out
}

// Returnable lists each product of the invoice with the quantity still returnable
func (r *Returns) Returnable(ctx context.Context, transactionID string) ([]ReturnableItem, error) {
	txn, err := r.store.GetTransaction(ctx, transactionID)
	if errors.Is(err, localstore.ErrNotFound) {
		return nil, ErrTransactionMissing
	}
	if err != nil {
		return nil, err
	}
	return returnable(txn), nil
}

// Process validates the request against what is still returnable, restocks
// the products, records the return and annotates the invoice, all in one
// local transaction.
func (r *Returns) Process(ctx context.Context, req ReturnRequest) (*localstore.Return, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrInvalidReturn)
	}

	now := r.now()
	ret := localstore.Return{
		ID:            uuid.New().String(),
		TransactionID: req.TransactionID,
		Reason:        req.Reason,
		Status:        localstore.ReturnStatusCompleted,
		CreatedAt:     now,
	}

	var (
		touched []localstore.Product
		txn     *localstore.Transaction
	)
	err := r.store.WithTx(ctx, func(tx *localstore.Store) error {
		var err error
		txn, err = tx.GetTransaction(ctx, req.TransactionID)
		if errors.Is(err, localstore.ErrNotFound) {
			return ErrTransactionMissing
		}
		if err != nil {
			return err
		}
		ret.InvoiceNumber = txn.InvoiceNumber

		remaining := map[string]ReturnableItem{}
		for _, item := range returnable(txn) {
			remaining[item.ProductID] = item
		}

		var lines []localstore.ReturnLine
		var refunds []float64
		for _, line := range req.Items {
			item, ok := remaining[line.ProductID]
			if !ok {
				return fmt.Errorf("%w: product %s is not on invoice %s", ErrInvalidReturn, line.ProductID, txn.InvoiceNumber)
			}
			if line.Quantity <= 0 || line.Quantity > item.Remaining {
				return fmt.Errorf("%w: %d of %s requested, %d returnable", ErrInvalidReturn, line.Quantity, item.Name, item.Remaining)
			}
			item.Remaining -= line.Quantity
			remaining[line.ProductID] = item

			refund, err := pos.Refund(item.Price, item.GSTPercent, line.Quantity)
			if err != nil {
				return err
			}
			refunds = append(refunds, refund)
			lines = append(lines, localstore.ReturnLine{
				ProductID:  line.ProductID,
				Name:       item.Name,
				Quantity:   line.Quantity,
				Price:      item.Price,
				GSTPercent: item.GSTPercent,
				Refund:     refund,
			})
			txn.ReturnedItems = append(txn.ReturnedItems, syncapi.ReturnedItem{
				ReturnID:   ret.ID,
				ProductID:  line.ProductID,
				Name:       item.Name,
				Quantity:   line.Quantity,
				Refund:     refund,
				ReturnedAt: now,
			})

			// A product deleted on this device has no stock to restore
			p, err := adjustStock(ctx, tx, line.ProductID, line.Quantity, now)
			if errors.Is(err, ErrProductNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			touched = append(touched, p)
		}

		ret.Items = datatypes.NewJSONSlice(lines)
		ret.RefundAmount = pos.SumRefunds(refunds...)
		txn.UpdatedAt = now

		if err := tx.SaveTransaction(ctx, txn); err != nil {
			return err
		}
		return tx.CreateReturn(ctx, &ret)
	})
	if err != nil {
		return nil, err
	}

	for _, p := range touched {
		r.inventory.put(p)
	}
	if r.transactions != nil {
		r.transactions.replace(*txn)
	}
	r.mu.Lock()
	r.list = append(r.list, ret)
	r.mu.Unlock()

	return &ret, nil
}

func returnable(txn *localstore.Transaction) []ReturnableItem {
	returned := map[string]int{}
	for _, ri := range txn.ReturnedItems {
		returned[ri.ProductID] += ri.Quantity
	}

	var out []ReturnableItem
	index := map[string]int{}
	for _, li := range txn.Items {
		if i, ok := index[li.ProductID]; ok {
			out[i].Sold += li.Quantity
			out[i].Remaining += li.Quantity
			continue
		}
		index[li.ProductID] = len(out)
		out = append(out, ReturnableItem{
			ProductID:  li.ProductID,
			Name:       li.Name,
			Price:      li.Price,
			GSTPercent: li.GSTPercent,
			Sold:       li.Quantity,
			Remaining:  li.Quantity,
		})
	}
	for i := range out {
		out[i].Returned = returned[out[i].ProductID]
		out[i].Remaining -= out[i].Returned
		if out[i].Remaining < 0 {
			out[i].Remaining = 0
		}
	}
	return out
}
