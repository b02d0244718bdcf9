package state

import "errors"

var (
	ErrInvalidProduct     = errors.New("invalid product")
	ErrProductNotFound    = errors.New("product not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrTransactionMissing = errors.New("transaction not found")
	ErrInvalidReturn      = errors.New("invalid return")
	ErrOperatorExists     = errors.New("operator already exists")
	ErrInvalidCredentials = errors.New("invalid email or pin")
	ErrOperatorInactive   = errors.New("operator is deactivated")
)
