package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stockapp_backend/internal/feature/stocks/domain/entity"
)

// StockQuerier is the EOD query surface this package decorates.
type StockQuerier interface {
	GetEodData(ctx context.Context, symbols string) (*entity.StockData, error)
}

// CachingStockRepository decorates a StockQuerier with Redis caching so that
// multiple server instances can share aggregation results. It implements the
// decorator pattern, transparently adding caching without modifying the
// underlying query.
type CachingStockRepository struct {
	inner     StockQuerier
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingStockRepository decorates a StockQuerier with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "stocks".
func NewCachingStockRepository(rdb *redis.Client, ttl time.Duration, inner StockQuerier, namespace string) *CachingStockRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "stocks"
	}
	return &CachingStockRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// GetEodData retrieves aggregation results, checking Redis first then falling
// back to the inner query. Errors from the inner query are never cached.
func (c *CachingStockRepository) GetEodData(ctx context.Context, symbols string) (*entity.StockData, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.GetEodData(ctx, symbols)
	}

	key := c.cacheKey(symbols)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.StockData
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the inner query
	out, err := c.inner.GetEodData(ctx, symbols)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// cacheKey generates a Redis key for the raw symbols string. The string is
// deliberately not normalized further; keying semantics match the in-process
// request cache.
func (c *CachingStockRepository) cacheKey(symbols string) string {
	return c.namespace + ":" + safe(symbols)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
