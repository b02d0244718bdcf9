package state

import (
	"context"

	"pos-service/internal/localstore"
)

// State bundles the containers of one till over a single local store
type State struct {
	Inventory    *Inventory
	Cart         *Cart
	Transactions *Transactions
	Returns      *Returns
	Operators    *Operators
}

func New(store *localstore.Store, now Clock) *State {
	inventory := NewInventory(store, now)
	transactions := NewTransactions(store, inventory, now)
	return &State{
		Inventory:    inventory,
		Cart:         NewCart(),
		Transactions: transactions,
		Returns:      NewReturns(store, inventory, transactions, now),
		Operators:    NewOperators(store, now),
	}
}

// Load reads every view from the store, e.g. after a sync pull
func (s *State) Load(ctx context.Context) error {
	if err := s.Inventory.Load(ctx); err != nil {
		return err
	}
	if err := s.Transactions.Load(ctx); err != nil {
		return err
	}
	return s.Returns.Load(ctx)
}
