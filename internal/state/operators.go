package state

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"pos-service/internal/localstore"
	"pos-service/pkg/syncapi"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

var pinPattern = regexp.MustCompile(`^[0-9]{4,6}$`)

// Operators manages the people who can sign in to the till
type Operators struct {
	store *localstore.Store
	now   Clock

	mu      sync.RWMutex
	current *localstore.Operator
}

func NewOperators(store *localstore.Store, now Clock) *Operators {
	if now == nil {
		now = syncapi.Now
	}
	return &Operators{store: store, now: now}
}

func (o *Operators) Add(ctx context.Context, email, name, role, pin string) (*localstore.Operator, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(name) == "" {
		return nil, errors.New("email and name are required")
	}
	if role != RoleAdmin && role != RoleCashier {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	if !pinPattern.MatchString(pin) {
		return nil, errors.New("pin must be 4 to 6 digits")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	op := &localstore.Operator{
		Email:     email,
		Name:      name,
		Role:      role,
		PinHash:   string(hash),
		Active:    true,
		CreatedAt: o.now(),
	}
	if err := o.store.CreateOperator(ctx, op); err != nil {
		if errors.Is(err, localstore.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrOperatorExists, email)
		}
		return nil, err
	}
	return op, nil
}

func (o *Operators) List(ctx context.Context) ([]localstore.Operator, error) {
	return o.store.ListOperators(ctx)
}

// Authenticate checks the pin and makes the operator current
func (o *Operators) Authenticate(ctx context.Context, email, pin string) (*localstore.Operator, error) {
	op, err := o.store.GetOperator(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, localstore.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PinHash), []byte(pin)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !op.Active {
		return nil, ErrOperatorInactive
	}

	o.mu.Lock()
	o.current = op
	o.mu.Unlock()
	return op, nil
}

// Deactivate blocks future sign-ins and signs the operator out if current
func (o *Operators) Deactivate(ctx context.Context, email string) error {
	op, err := o.store.GetOperator(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	op.Active = false
	if err := o.store.SaveOperator(ctx, op); err != nil {
		return err
	}

	o.mu.Lock()
	if o.current != nil && o.current.Email == op.Email {
		o.current = nil
	}
	o.mu.Unlock()
	return nil
}

func (o *Operators) Current() (localstore.Operator, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.current == nil {
		return localstore.Operator{}, false
	}
	return *o.current, true
}

func (o *Operators) Logout() {
	o.mu.Lock()
	o.current = nil
	o.mu.Unlock()
}
