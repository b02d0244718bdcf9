package repository

import (
	"context"
	"fmt"
	"time"

	"pos-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) ChangedSince(ctx context.Context, userID, storeID string, since *time.Time) ([]model.Transaction, error) {
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

	txns := []model.Transaction{}
	if err := query.Order("created_at asc").Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("failed to list changed transactions: %w", err)
	}
	return txns, nil
}

func (r *transactionRepo) InvoiceIndex(ctx context.Context, userID string) (map[string]string, error) {
	var rows []struct {
		ID            string
		InvoiceNumber string
	}
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("id", "invoice_number").
		Where("user_id = ?", userID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice numbers: %w", err)
	}

	index := make(map[string]string, len(rows))
	for _, row := range rows {
		index[row.InvoiceNumber] = row.ID
	}
	return index, nil
}

func (r *transactionRepo) InsertIfAbsent(ctx context.Context, txn *model.Transaction) (bool, error) {
	if txn.ID == "" || txn.UserID == "" || txn.InvoiceNumber == "" {
		return false, fmt.Errorf("%w: transaction id, user id and invoice number required", ErrInvalidInput)
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(txn)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert transaction %s: %w", txn.InvoiceNumber, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *transactionRepo) UpdateReturns(ctx context.Context, txn *model.Transaction) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("id = ? AND user_id = ? AND updated_at < ?", txn.ID, txn.UserID, txn.UpdatedAt).
		Updates(map[string]interface{}{
			"returned_items": txn.ReturnedItems,
			"updated_at":     txn.UpdatedAt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update returns of %s: %w", txn.InvoiceNumber, res.Error)
	}
	return res.RowsAffected == 1, nil
}
