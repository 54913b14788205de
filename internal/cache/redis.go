package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storeops/reporting-backend/internal/config"
	"github.com/storeops/reporting-backend/internal/domain"
)

const transactionKeyPrefix = "par:transactions"

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newRedisCache(cfg config.CacheConfig, ttl time.Duration) (TransactionCache, error) {
	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisCache{client: client, ttl: ttl}, nil
}

func (c *redisCache) Get(ctx context.Context, table string) ([]domain.Transaction, bool, error) {
	payload, err := c.client.Get(ctx, transactionKey(table)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var txs []domain.Transaction
	if err := json.Unmarshal(payload, &txs); err != nil {
		return nil, false, fmt.Errorf("decode transaction cache: %w", err)
	}
	return txs, true, nil
}

func (c *redisCache) Set(ctx context.Context, table string, txs []domain.Transaction) error {
	payload, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("encode transaction cache: %w", err)
	}
	if err := c.client.Set(ctx, transactionKey(table), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisCache) Clear(ctx context.Context, table string) error {
	if table == "" {
		return deleteKeysWithPrefix(ctx, c.client, transactionKeyPrefix, transactionScanBatchSize)
	}
	return c.client.Del(ctx, transactionKey(table)).Err()
}

func transactionKey(table string) string {
	return fmt.Sprintf("%s:%s", transactionKeyPrefix, table)
}
