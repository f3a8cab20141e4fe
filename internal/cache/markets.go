package cache

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"crypto-analytics/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	defaultFetchTimeout = 15 * time.Second
	marketsFlightKey    = "markets"
)

// MarketSource fetches one page of assets.
type MarketSource interface {
	FetchMarkets(ctx context.Context, q domain.MarketQuery) ([]domain.Asset, error)
}

// MarketCache holds the session's top-N asset batch. Once loaded the batch is
// served for the life of the cache and never refetched.
type MarketCache struct {
	tracer  trace.Tracer
	source  MarketSource
	query   domain.MarketQuery
	timeout time.Duration

	flights singleflight.Group

	mu      sync.RWMutex
	assets  []domain.Asset
	loaded  bool
	loading bool
	lastErr error
}

func NewMarketCache(tracer trace.Tracer, source MarketSource, query domain.MarketQuery, timeout time.Duration) *MarketCache {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &MarketCache{
		tracer:  tracer,
		source:  source,
		query:   query,
		timeout: timeout,
	}
}

// Assets returns the cached batch without blocking. The first call on an idle,
// empty cache starts a background fetch and reports loading. After a failed
// fetch it reports empty and not loading until Load is called again.
func (c *MarketCache) Assets(ctx context.Context) ([]domain.Asset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return domain.CloneAssets(c.assets), false
	}
	if !c.loading && c.lastErr == nil {
		c.loading = true
		go func() {
			_, _ = c.Load(context.WithoutCancel(ctx))
		}()
	}
	return nil, c.loading
}

// Load returns the cached batch, fetching it if needed. Concurrent callers
// share a single upstream request.
func (c *MarketCache) Load(ctx context.Context) ([]domain.Asset, error) {
	c.mu.RLock()
	if c.loaded {
		assets := domain.CloneAssets(c.assets)
		c.mu.RUnlock()
		return assets, nil
	}
	c.mu.RUnlock()

	ch := c.flights.DoChan(marketsFlightKey, func() (interface{}, error) {
		return c.fetch(ctx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return domain.CloneAssets(res.Val.([]domain.Asset)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Loading reports whether a fetch is in flight.
func (c *MarketCache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err returns the error of the last failed fetch, or nil.
func (c *MarketCache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

func (c *MarketCache) fetch(ctx context.Context) (assets []domain.Asset, err error) {
	c.mu.Lock()
	if c.loaded {
		assets = c.assets
		c.mu.Unlock()
		return assets, nil
	}
	c.loading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.loading = false
		if err != nil {
			c.lastErr = err
			return
		}
		c.assets = assets
		c.loaded = true
		c.lastErr = nil
	}()

	// The fetch outlives the caller that triggered it; only the timeout stops it.
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()
	fetchCtx, span := c.tracer.Start(fetchCtx, "market-cache.fetch")
	defer span.End()

	assets, err = c.source.FetchMarkets(fetchCtx, c.query)
	if err == nil {
		err = domain.ValidateAssets(assets)
	}
	if err != nil {
		span.RecordError(err)
		log.Printf("market cache fetch failed: %v", err)
		return nil, fmt.Errorf("load markets: %w", err)
	}

	span.SetAttributes(attribute.Int("assets", len(assets)))
	log.Printf("Loaded %d assets into market cache", len(assets))
	return assets, nil
}
