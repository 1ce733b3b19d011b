// Package cache provides caching implementations for the stocks query path.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"stockapp_backend/internal/feature/stocks/domain/entity"
)

// requestEntry is one cached aggregation result. A later successful
// computation for the same key supersedes the entry whole; entries are
// never mutated in place.
type requestEntry struct {
	value     *entity.StockData
	createdAt time.Time
}

// RequestCache memoizes aggregation results in process memory, keyed by the
// normalized symbol-list string. At most one computation runs per key at a
// time: concurrent callers for the same key await the in-flight result
// instead of triggering duplicate upstream fetches. Failed computations are
// never stored, so the next caller gets a fresh attempt.
//
// A ttl of zero or less means entries never expire (they live until process
// restart).
type RequestCache struct {
	ttl   time.Duration
	group singleflight.Group

	mu    sync.RWMutex
	items map[string]requestEntry
}

// NewRequestCache creates a RequestCache with the given freshness window.
func NewRequestCache(ttl time.Duration) *RequestCache {
	return &RequestCache{ttl: ttl, items: make(map[string]requestEntry)}
}

// GetOrCompute returns the cached value for key if it is still fresh,
// otherwise runs compute (once per key across concurrent callers) and caches
// a successful result.
func (c *RequestCache) GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (*entity.StockData, error)) (*entity.StockData, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A sibling flight may have stored the key while we queued.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		res, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.items[key] = requestEntry{value: res, createdAt: time.Now()}
		c.mu.Unlock()
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entity.StockData), nil
}

// lookup returns a fresh cached value for key, if any.
func (c *RequestCache) lookup(key string) (*entity.StockData, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Since(e.createdAt) >= c.ttl {
		return nil, false
	}
	return e.value, true
}
