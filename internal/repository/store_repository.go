package repository

import (
	"context"
	"fmt"

	"pos-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type storeRepo struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepo{db: db}
}

func (r *storeRepo) Create(ctx context.Context, store *model.Store) error {
	if store.UserID == "" {
		return fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if store.Name == "" {
		return fmt.Errorf("%w: store name required", ErrInvalidInput)
	}
	if store.ID == "" {
		store.ID = uuid.New().String()
	}

	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return fmt.Errorf("failed to create store: %w", translate(err))
	}
	return nil
}

func (r *storeRepo) ListByUser(ctx context.Context, userID string) ([]model.Store, error) {
	stores := []model.Store{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&stores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}
