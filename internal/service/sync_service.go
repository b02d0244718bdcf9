package service

import (
	"context"
	"fmt"
	"time"

	"pos-service/internal/model"
	"pos-service/internal/repository"
	"pos-service/pkg/logger"
	"pos-service/pkg/syncapi"
	"pos-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SyncService reconciles device pushes with the server copy and serves pulls
type SyncService struct {
	db      *gorm.DB
	metrics *prometheus.Metrics
	now     func() time.Time
}

func NewSyncService(db *gorm.DB, metrics *prometheus.Metrics) *SyncService {
	return &SyncService{
		db:      db,
		metrics: metrics,
		now:     syncapi.Now,
	}
}

// Pull returns every product and transaction of the user changed after
// req.LastSyncAt. SyncedAt is read before querying so a record written
// during the pull is returned again next time rather than lost.
func (s *SyncService) Pull(ctx context.Context, req syncapi.PullRequest) (*syncapi.PullResponse, error) {
	log := logger.FromGoContext(ctx)
	defer s.metrics.TrackDBOperation("sync_pull")(time.Now())

	syncedAt := s.now()

	var since *time.Time
	if req.LastSyncAt != nil {
		t := syncapi.Timestamp(*req.LastSyncAt)
		since = &t
	}

	products, err := repository.NewProductRepository(s.db).ChangedSince(ctx, req.UserID, req.StoreID, since)
	if err != nil {
		s.metrics.RecordSync("pull", "error")
		return nil, err
	}
	txns, err := repository.NewTransactionRepository(s.db).ChangedSince(ctx, req.UserID, req.StoreID, since)
	if err != nil {
		s.metrics.RecordSync("pull", "error")
		return nil, err
	}

	resp := &syncapi.PullResponse{
		Products:     make([]syncapi.Product, 0, len(products)),
		Transactions: make([]syncapi.Transaction, 0, len(txns)),
		SyncedAt:     syncedAt,
	}
	for _, p := range products {
		resp.Products = append(resp.Products, p.ToAPI())
	}
	for _, t := range txns {
		resp.Transactions = append(resp.Transactions, t.ToAPI())
	}

	s.metrics.RecordSync("pull", "success")
	log.Info("Sync pull served",
		zap.String("user_id", req.UserID),
		zap.String("store_id", req.StoreID),
		zap.Int("products", len(resp.Products)),
		zap.Int("transactions", len(resp.Transactions)))
	return resp, nil
}

// Push applies a device's full record set in one database transaction.
// Products are created when absent and otherwise updated unless the stored
// copy is newer. Transactions are created once per invoice number; a
// replayed invoice only refreshes its returned-items annotation.
func (s *SyncService) Push(ctx context.Context, req syncapi.PushRequest) (*syncapi.PushResponse, error) {
	log := logger.FromGoContext(ctx)
	defer s.metrics.TrackDBOperation("sync_push")(time.Now())

	if req.UserID == "" {
		return nil, fmt.Errorf("%w: user id required", repository.ErrInvalidInput)
	}

	now := s.now()
	var results syncapi.PushResults

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		results = syncapi.PushResults{}

		products := repository.NewProductRepository(tx)
		for _, p := range req.Products {
			row := model.ProductFromAPI(req.UserID, req.StoreID, p)
			normalizeProduct(&row, now)

			outcome, err := products.Upsert(ctx, &row)
			if err != nil {
				return err
			}
			switch outcome {
			case repository.Created:
				results.ProductsCreated++
			case repository.Updated:
				results.ProductsUpdated++
			default:
				results.ProductsSkipped++
				log.Debug("Stale or foreign product skipped", zap.String("product_id", row.ID))
			}
		}

		txns := repository.NewTransactionRepository(tx)
		invoices, err := txns.InvoiceIndex(ctx, req.UserID)
		if err != nil {
			return err
		}

		for _, t := range req.Transactions {
			row := model.TransactionFromAPI(req.UserID, req.StoreID, t)
			normalizeTransaction(&row, now)

			if id, exists := invoices[row.InvoiceNumber]; exists {
				if id == row.ID && len(row.ReturnedItems) > 0 {
					updated, err := txns.UpdateReturns(ctx, &row)
					if err != nil {
						return err
					}
					if updated {
						results.TransactionsUpdated++
						continue
					}
				}
				results.TransactionsSkipped++
				continue
			}

			created, err := txns.InsertIfAbsent(ctx, &row)
			if err != nil {
				return err
			}
			if created {
				results.TransactionsCreated++
				invoices[row.InvoiceNumber] = row.ID
			} else {
				results.TransactionsSkipped++
			}
		}
		return nil
	})
	if err != nil {
		s.metrics.RecordSync("push", "error")
		log.Error("Sync push failed", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}

	s.metrics.RecordSync("push", "success")
	s.metrics.RecordSyncRecords("product", "created", results.ProductsCreated)
	s.metrics.RecordSyncRecords("product", "updated", results.ProductsUpdated)
	s.metrics.RecordSyncRecords("product", "skipped", results.ProductsSkipped)
	s.metrics.RecordSyncRecords("transaction", "created", results.TransactionsCreated)
	s.metrics.RecordSyncRecords("transaction", "updated", results.TransactionsUpdated)
	s.metrics.RecordSyncRecords("transaction", "skipped", results.TransactionsSkipped)

	log.Info("Sync push applied",
		zap.String("user_id", req.UserID),
		zap.Int("products_created", results.ProductsCreated),
		zap.Int("products_updated", results.ProductsUpdated),
		zap.Int("products_skipped", results.ProductsSkipped),
		zap.Int("transactions_created", results.TransactionsCreated),
		zap.Int("transactions_skipped", results.TransactionsSkipped))

	return &syncapi.PushResponse{
		Success:  true,
		Results:  results,
		SyncedAt: s.now(),
	}, nil
}

func normalizeProduct(p *model.Product, now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	p.CreatedAt = syncapi.Timestamp(p.CreatedAt)
	p.UpdatedAt = syncapi.Timestamp(p.UpdatedAt)
	if p.ExpiryDate != nil {
		t := syncapi.Timestamp(*p.ExpiryDate)
		p.ExpiryDate = &t
	}
}

func normalizeTransaction(t *model.Transaction, now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	t.CreatedAt = syncapi.Timestamp(t.CreatedAt)
	t.UpdatedAt = syncapi.Timestamp(t.UpdatedAt)
}
