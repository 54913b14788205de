package cache

import (
	"context"
	"sync"
	"time"

	"github.com/storeops/reporting-backend/internal/domain"
)

type memoryEntry struct {
	txs       []domain.Transaction
	fetchedAt time.Time
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	clock   func() time.Time
}

// NewMemoryCache returns an in-process TTL cache. The clock is injectable
// so tests can assert expiry without sleeping.
func NewMemoryCache(ttl time.Duration, clock func() time.Time) TransactionCache {
	if clock == nil {
		clock = time.Now
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &memoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

func (c *memoryCache) Get(ctx context.Context, table string) ([]domain.Transaction, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[table]
	if !ok {
		return nil, false, nil
	}
	if c.clock().Sub(entry.fetchedAt) >= c.ttl {
		delete(c.entries, table)
		return nil, false, nil
	}
	return entry.txs, true, nil
}

func (c *memoryCache) Set(ctx context.Context, table string, txs []domain.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[table] = memoryEntry{txs: txs, fetchedAt: c.clock()}
	return nil
}

func (c *memoryCache) Clear(ctx context.Context, table string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, table)
	return nil
}
