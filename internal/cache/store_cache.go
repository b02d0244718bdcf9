package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pos-service/internal/model"
	"pos-service/internal/repository"
	"pos-service/pkg/logger"
	"pos-service/prometheus"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedStoreRepository serves store lists from redis and falls back to the
// wrapped repository. Redis failures are logged and never fail a request.
type CachedStoreRepository struct {
	realRepo repository.StoreRepository
	redis    *redis.Client
	ttl      time.Duration
	metrics  *prometheus.Metrics
}

func NewCachedStoreRepository(realRepo repository.StoreRepository, redis *redis.Client, ttl time.Duration, metrics *prometheus.Metrics) *CachedStoreRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedStoreRepository{
		realRepo: realRepo,
		redis:    redis,
		ttl:      ttl,
		metrics:  metrics,
	}
}

func storesKey(userID string) string {
	return fmt.Sprintf("stores:user:%s", userID)
}

func (c *CachedStoreRepository) ListByUser(ctx context.Context, userID string) ([]model.Store, error) {
	log := logger.FromGoContext(ctx)
	key := storesKey(userID)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var stores []model.Store
		if err := json.Unmarshal(data, &stores); err != nil {
			log.Warn("Failed to unmarshal cached stores (continuing with DB)", zap.Error(err))
			break
		}
		c.metrics.RecordStoreCache("hit")
		return stores, nil

	case errors.Is(err, redis.Nil):

	default:
		log.Warn("Redis error (continuing with DB)", zap.Error(err))
	}

	c.metrics.RecordStoreCache("miss")
	stores, err := c.realRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(stores)
	if err != nil {
		log.Warn("Failed to marshal stores", zap.Error(err))
		return stores, nil
	}
	if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		log.Warn("Failed to cache stores", zap.String("key", key), zap.Error(err))
	}

	return stores, nil
}

func (c *CachedStoreRepository) Create(ctx context.Context, store *model.Store) error {
	if err := c.realRepo.Create(ctx, store); err != nil {
		return err
	}

	key := storesKey(store.UserID)
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		logger.FromGoContext(ctx).Warn("Failed to delete store cache", zap.String("key", key), zap.Error(err))
	}
	return nil
}
