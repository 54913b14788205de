package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/storeops/reporting-backend/internal/config"
	"github.com/storeops/reporting-backend/internal/domain"
)

// TransactionCache memoizes the normalized transaction set per source
// table so concurrent report views inside the TTL window reuse one fetch.
// Entries are immutable once written: a table is either fully cached or
// absent, so there is no partial-update race to guard. Keys carry no
// report parameters.
type TransactionCache interface {
	Get(ctx context.Context, table string) ([]domain.Transaction, bool, error)
	Set(ctx context.Context, table string, txs []domain.Transaction) error
	Clear(ctx context.Context, table string) error
}

// New builds the cache selected by configuration: the in-process TTL
// cache by default, redis when multiple replicas must share fetches, or
// a no-op when caching is disabled.
func New(cfg config.CacheConfig) (TransactionCache, error) {
	if !cfg.Enabled {
		return NewNoopCache(), nil
	}

	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryCache(ttl, time.Now), nil
	case "redis":
		return newRedisCache(cfg, ttl)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

type noopCache struct{}

// NewNoopCache returns a cache that stores nothing; every report render
// re-fetches the upstream table.
func NewNoopCache() TransactionCache {
	return noopCache{}
}

func (noopCache) Get(ctx context.Context, table string) ([]domain.Transaction, bool, error) {
	return nil, false, nil
}

func (noopCache) Set(ctx context.Context, table string, txs []domain.Transaction) error {
	return nil
}

func (noopCache) Clear(ctx context.Context, table string) error {
	return nil
}
