package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"crypto-analytics/internal/domain"

	"github.com/redis/go-redis/v9"
)

// ChartSource is the upstream the Redis decorator wraps.
type ChartSource interface {
	FetchMarkets(ctx context.Context, q domain.MarketQuery) ([]domain.Asset, error)
	FetchHistory(ctx context.Context, assetID string, days int) ([]domain.PricePoint, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachingSource shares upstream responses between the sessions served by one
// process. Session caches still own their data; this only spares the API.
// A nil Redis client turns it into a pass-through.
type CachingSource struct {
	inner     ChartSource
	rdb       RedisClient
	ttl       time.Duration
	namespace string
}

// NewCachingSource wraps inner. A non-positive ttl defaults to one minute and an
// empty namespace to "upstream".
func NewCachingSource(inner ChartSource, rdb RedisClient, ttl time.Duration, namespace string) *CachingSource {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "upstream"
	}
	return &CachingSource{inner: inner, rdb: rdb, ttl: ttl, namespace: namespace}
}

func (c *CachingSource) FetchMarkets(ctx context.Context, q domain.MarketQuery) ([]domain.Asset, error) {
	key := fmt.Sprintf("%s:markets:%s:%s:%d:%d", c.namespace, q.VsCurrency, q.Order, q.PerPage, q.Page)
	return cached(ctx, c, key, func() ([]domain.Asset, error) {
		return c.inner.FetchMarkets(ctx, q)
	})
}

func (c *CachingSource) FetchHistory(ctx context.Context, assetID string, days int) ([]domain.PricePoint, error) {
	key := fmt.Sprintf("%s:history:%s:%d", c.namespace, assetID, days)
	return cached(ctx, c, key, func() ([]domain.PricePoint, error) {
		return c.inner.FetchHistory(ctx, assetID, days)
	})
}

func cached[T any](ctx context.Context, c *CachingSource, key string, load func() (T, error)) (T, error) {
	if c.rdb == nil {
		return load()
	}

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out T
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	} else if err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("redis cache read error for %s: %v", key, err)
	}

	out, err := load()
	if err != nil {
		return out, err
	}

	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			log.Printf("redis cache write error for %s: %v", key, err)
		}
	}
	return out, nil
}
