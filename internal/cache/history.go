package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"crypto-analytics/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidWindow = errors.New("history window must be a positive number of days")

// HistorySource fetches the price series of one asset.
type HistorySource interface {
	FetchHistory(ctx context.Context, assetID string, days int) ([]domain.PricePoint, error)
}

// HistoryCache holds the tracked asset's price series keyed by window length.
// Entries are immutable once stored and are never evicted.
type HistoryCache struct {
	tracer  trace.Tracer
	source  HistorySource
	assetID string
	timeout time.Duration

	flights singleflight.Group

	mu      sync.RWMutex
	series  map[int][]domain.PricePoint
	loading map[int]bool
	errs    map[int]error
}

func NewHistoryCache(tracer trace.Tracer, source HistorySource, assetID string, timeout time.Duration) *HistoryCache {
	if assetID == "" {
		assetID = domain.DefaultTrackedAssetID
	}
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &HistoryCache{
		tracer:  tracer,
		source:  source,
		assetID: assetID,
		timeout: timeout,
		series:  make(map[int][]domain.PricePoint),
		loading: make(map[int]bool),
		errs:    make(map[int]error),
	}
}

// AssetID is the asset whose history this cache holds.
func (c *HistoryCache) AssetID() string {
	return c.assetID
}

// History returns the series for days without blocking, starting a background
// fetch on the first miss for that window.
func (c *HistoryCache) History(ctx context.Context, days int) ([]domain.PricePoint, bool) {
	if days <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if points, ok := c.series[days]; ok {
		return domain.ClonePoints(points), false
	}
	if !c.loading[days] && c.errs[days] == nil {
		c.loading[days] = true
		go func() {
			_, _ = c.Load(context.WithoutCancel(ctx), days)
		}()
	}
	return nil, c.loading[days]
}

// Load returns the series for days, fetching it if needed. At most one fetch
// per window is in flight; concurrent callers wait on it.
func (c *HistoryCache) Load(ctx context.Context, days int) ([]domain.PricePoint, error) {
	if days <= 0 {
		return nil, ErrInvalidWindow
	}

	c.mu.RLock()
	if points, ok := c.series[days]; ok {
		out := domain.ClonePoints(points)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	ch := c.flights.DoChan(strconv.Itoa(days), func() (interface{}, error) {
		return c.fetch(ctx, days)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return domain.ClonePoints(res.Val.([]domain.PricePoint)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Loading reports whether the window's fetch is in flight.
func (c *HistoryCache) Loading(days int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading[days]
}

// Err returns the last fetch error for the window, or nil.
func (c *HistoryCache) Err(days int) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errs[days]
}

// Windows lists the cached window lengths.
func (c *HistoryCache) Windows() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]int, 0, len(c.series))
	for days := range c.series {
		out = append(out, days)
	}
	return out
}

func (c *HistoryCache) fetch(ctx context.Context, days int) (points []domain.PricePoint, err error) {
	c.mu.Lock()
	if cached, ok := c.series[days]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.loading[days] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.loading, days)
		if err != nil {
			c.errs[days] = err
			return
		}
		c.series[days] = points
		delete(c.errs, days)
	}()

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()
	fetchCtx, span := c.tracer.Start(fetchCtx, "history-cache.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("asset_id", c.assetID), attribute.Int("days", days))

	points, err = c.source.FetchHistory(fetchCtx, c.assetID, days)
	if err != nil {
		span.RecordError(err)
		log.Printf("history cache fetch failed for %s (%dd): %v", c.assetID, days, err)
		return nil, fmt.Errorf("load %d day history: %w", days, err)
	}

	log.Printf("Loaded %d day history for %s (%d points)", days, c.assetID, len(points))
	return points, nil
}
