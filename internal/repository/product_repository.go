package repository

import (
	"context"
	"fmt"
	"time"

	"pos-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) ChangedSince(ctx context.Context, userID, storeID string, since *time.Time) ([]model.Product, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if storeID != "" {
		query = query.Where("(store_id = ? OR store_id = '')", storeID)
	}
	if since != nil {
		query = query.Where("updated_at > ?", since.UTC())
	}

	products := []model.Product{}
	if err := query.Order("updated_at asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list changed products: %w", err)
	}
	return products, nil
}

func (r *productRepo) Upsert(ctx context.Context, p *model.Product) (UpsertResult, error) {
	if p.ID == "" || p.UserID == "" {
		return Skipped, fmt.Errorf("%w: product and user id required", ErrInvalidInput)
	}
	if p.Quantity < 0 {
		return Skipped, fmt.Errorf("%w: product quantity cannot be negative", ErrInvalidInput)
	}

	db := r.db.WithContext(ctx)

	// Insert-if-absent settles concurrent creates of the same id: only one wins
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(p)
	if res.Error != nil {
		return Skipped, fmt.Errorf("failed to insert product %s: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 1 {
		return Created, nil
	}

	updates := map[string]interface{}{
		"code":                p.Code,
		"name":                p.Name,
		"category":            p.Category,
		"quantity":            p.Quantity,
		"unit":                p.Unit,
		"price":               p.Price,
		"gst_percent":         p.GSTPercent,
		"low_stock_threshold": p.LowStockThreshold,
		"expiry_date":         p.ExpiryDate,
		"description":         p.Description,
		"updated_at":          p.UpdatedAt,
	}
	if p.StoreID != "" {
		updates["store_id"] = p.StoreID
	}

	// Compare-and-swap on updated_at: an older copy never overwrites a newer one
	res = db.Model(&model.Product{}).
		Where("id = ? AND user_id = ? AND updated_at <= ?", p.ID, p.UserID, p.UpdatedAt).
		Updates(updates)
	if res.Error != nil {
		return Skipped, fmt.Errorf("failed to update product %s: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return Skipped, nil
	}
	return Updated, nil
}
