package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"crypto-analytics/internal/cache"
	"crypto-analytics/internal/derive"
	"crypto-analytics/internal/domain"
	"crypto-analytics/internal/preference"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	breakdownSize = 5
	axisTickCount = 5
)

// Sources are the upstream clients shared by every session of a process.
type Sources struct {
	Markets cache.MarketSource
	History cache.HistorySource
	Rates   RateProvider
}

// SessionConfig holds the per-session settings taken from config.
type SessionConfig struct {
	TrackedAssetID string
	Query          domain.MarketQuery
	FetchTimeout   time.Duration
	Language       domain.Language
	Currency       domain.Currency
	DefaultDays    int
	Location       *time.Location
}

// Dashboard composes the caches, the rate fetcher and the preference store of
// one viewing session.
type Dashboard struct {
	tracer      trace.Tracer
	markets     *cache.MarketCache
	history     *cache.HistoryCache
	rates       *RateFetcher
	prefs       *preference.Store
	loc         *time.Location
	defaultDays int
}

func NewDashboard(
	tracer trace.Tracer,
	markets *cache.MarketCache,
	history *cache.HistoryCache,
	rates *RateFetcher,
	prefs *preference.Store,
	loc *time.Location,
	defaultDays int,
) *Dashboard {
	if loc == nil {
		loc = time.Local
	}
	if defaultDays <= 0 {
		defaultDays = domain.HistoryWindows[0]
	}
	return &Dashboard{
		tracer:      tracer,
		markets:     markets,
		history:     history,
		rates:       rates,
		prefs:       prefs,
		loc:         loc,
		defaultDays: defaultDays,
	}
}

// NewSession builds a Dashboard with its own caches and preferences on top of
// shared upstream sources.
func NewSession(tracer trace.Tracer, src Sources, cfg SessionConfig) *Dashboard {
	return NewDashboard(
		tracer,
		cache.NewMarketCache(tracer, src.Markets, cfg.Query, cfg.FetchTimeout),
		cache.NewHistoryCache(tracer, src.History, cfg.TrackedAssetID, cfg.FetchTimeout),
		NewRateFetcher(tracer, src.Rates, cfg.FetchTimeout),
		preference.NewStore(cfg.Language, cfg.Currency),
		cfg.Location,
		cfg.DefaultDays,
	)
}

// DefaultDays is the history window shown when none is selected.
func (d *Dashboard) DefaultDays() int {
	return d.defaultDays
}

func (d *Dashboard) Preferences() domain.Preference {
	return d.prefs.Snapshot()
}

// Subscribe registers fn for preference changes.
func (d *Dashboard) Subscribe(fn func(domain.Preference)) {
	d.prefs.Subscribe(fn)
}

// SyncRate fetches the USD rate of the selected currency and stores it. The
// stored rate changes only on success and only while that currency is still
// selected. The base currency always uses rate 1 without a fetch.
func (d *Dashboard) SyncRate(ctx context.Context) error {
	ctx, span := d.tracer.Start(ctx, "dashboard.sync-rate")
	defer span.End()

	cur := d.prefs.Snapshot().Currency
	span.SetAttributes(attribute.String("currency", string(cur)))

	if cur == domain.BaseCurrency {
		d.prefs.SetExchangeRateFor(cur, 1)
		return nil
	}

	var res RateResult
	select {
	case res = <-d.rates.Request(ctx, domain.BaseCurrency, cur):
	case <-ctx.Done():
		return ctx.Err()
	}
	if !res.OK() {
		err := res.Err
		if err == nil {
			err = fmt.Errorf("%w: %s/%s", ErrRateNotFound, domain.BaseCurrency, cur)
		}
		span.RecordError(err)
		return fmt.Errorf("sync exchange rate: %w", err)
	}

	if _, applied := d.prefs.SetExchangeRateFor(cur, res.Rate); !applied {
		log.Printf("exchange rate for %s discarded, currency changed while fetching", cur)
	}
	return nil
}

// RequestRate runs SyncRate in the background.
func (d *Dashboard) RequestRate(ctx context.Context) {
	go func() {
		if err := d.SyncRate(context.WithoutCancel(ctx)); err != nil {
			log.Printf("exchange rate sync failed: %v", err)
		}
	}()
}

// ToggleBoth flips language and currency together and refreshes the rate.
func (d *Dashboard) ToggleBoth(ctx context.Context) domain.Preference {
	p := d.prefs.ToggleBoth()
	d.refreshRateFor(ctx, p)
	return p
}

func (d *Dashboard) ToggleLanguage(ctx context.Context) domain.Preference {
	return d.prefs.ToggleLanguage()
}

func (d *Dashboard) ToggleCurrency(ctx context.Context) domain.Preference {
	p := d.prefs.ToggleCurrency()
	d.refreshRateFor(ctx, p)
	return p
}

// refreshRateFor fetches the rate of the newly selected currency. The store
// already reset the rate to 1 when that currency is the base one.
func (d *Dashboard) refreshRateFor(ctx context.Context, p domain.Preference) {
	if p.Currency == domain.BaseCurrency {
		return
	}
	d.RequestRate(ctx)
}

// Warm starts the market and history fetches without waiting for them.
func (d *Dashboard) Warm(ctx context.Context, days int) {
	d.markets.Assets(ctx)
	d.history.History(ctx, d.window(days))
}

// Retry reloads the markets batch and the window after a failure. Entries
// already cached are returned as they are.
func (d *Dashboard) Retry(ctx context.Context, days int) error {
	ctx, span := d.tracer.Start(ctx, "dashboard.retry")
	defer span.End()

	_, marketsErr := d.markets.Load(ctx)
	_, historyErr := d.history.Load(ctx, d.window(days))
	return errors.Join(marketsErr, historyErr)
}

// Assets returns the raw markets batch, empty while loading or after a failure.
func (d *Dashboard) Assets(ctx context.Context) []domain.Asset {
	assets, _ := d.markets.Assets(ctx)
	return assets
}

// Export writes the markets batch as CSV.
func (d *Dashboard) Export(ctx context.Context, w io.Writer) error {
	return derive.ExportCSV(w, d.Assets(ctx))
}

func (d *Dashboard) window(days int) int {
	if days <= 0 {
		return d.defaultDays
	}
	return days
}

// View is everything a surface needs to render one frame of the dashboard.
type View struct {
	Preference domain.Preference `json:"preference"`
	Labels     derive.Labels     `json:"labels"`

	Days        int    `json:"days"`
	WindowLabel string `json:"window_label"`

	MarketsLoading bool   `json:"markets_loading"`
	MarketsError   string `json:"markets_error,omitempty"`
	HistoryLoading bool   `json:"history_loading"`
	HistoryError   string `json:"history_error,omitempty"`
	RateLoading    bool   `json:"rate_loading"`
	RateError      string `json:"rate_error,omitempty"`

	Summary    *derive.Summary     `json:"summary,omitempty"`
	ChartTitle string              `json:"chart_title"`
	Chart      []derive.ChartPoint `json:"chart"`
	AxisTicks  []string            `json:"axis_ticks,omitempty"`
	Sort       domain.TableSort    `json:"sort"`
	Table      []derive.TableRow   `json:"table"`
	Breakdown  []derive.Slice      `json:"breakdown"`
	Overview   *derive.Overview    `json:"overview,omitempty"`

	Assets []domain.Asset `json:"-"`
}

// HasMarkets reports whether the markets batch is available.
func (v View) HasMarkets() bool {
	return len(v.Assets) > 0
}

// Snapshot assembles the current view without blocking on any fetch.
func (d *Dashboard) Snapshot(ctx context.Context, days int, sort domain.TableSort) View {
	ctx, span := d.tracer.Start(ctx, "dashboard.snapshot")
	defer span.End()

	days = d.window(days)
	pref := d.prefs.Snapshot()
	assets, marketsLoading := d.markets.Assets(ctx)
	points, historyLoading := d.history.History(ctx, days)
	rate := d.rates.Status()

	assetName := d.history.AssetID()
	for _, a := range assets {
		if a.ID == d.history.AssetID() {
			assetName = a.Name
			break
		}
	}

	v := View{
		Preference:     pref,
		Labels:         derive.LabelsFor(pref.Language, assetName),
		Days:           days,
		WindowLabel:    derive.WindowLabel(pref.Language, days),
		MarketsLoading: marketsLoading,
		HistoryLoading: historyLoading,
		RateLoading:    rate.Loading && rate.To == pref.Currency,
		ChartTitle:     derive.ChartTitle(assetName, days, pref.Language),
		Sort:           sort,
		Assets:         assets,
	}
	if err := d.markets.Err(); err != nil && len(assets) == 0 {
		v.MarketsError = err.Error()
	}
	if err := d.history.Err(days); err != nil && len(points) == 0 {
		v.HistoryError = err.Error()
	}
	if rate.Err != nil && rate.To == pref.Currency {
		v.RateError = rate.Err.Error()
	}

	if summary, ok := derive.BuildSummary(assets, pref); ok {
		v.Summary = &summary
	}
	if ext, ok := derive.FindExtremes(assets); ok {
		overview := derive.OverviewRows(ext.HighestCap, pref)
		v.Overview = &overview
	}
	v.Chart = derive.ChartSeries(points, pref, d.loc)
	v.AxisTicks = derive.AxisTicks(v.Chart, axisTickCount, pref)
	v.Table = derive.TableRows(derive.SortAssets(assets, sort.Key, sort.Order, pref.Language), pref)
	v.Breakdown = derive.TopByMarketCap(assets, breakdownSize, pref)

	span.SetAttributes(
		attribute.Int("days", days),
		attribute.Int("assets", len(assets)),
		attribute.Int("points", len(points)),
	)
	return v
}
