package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"crypto-analytics/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoProvider fetches market batches and price history from the CoinGecko free API.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewCoinGeckoProvider creates a provider paced at 8 requests per minute.
// An empty baseURL selects the public API.
func NewCoinGeckoProvider(tracer trace.Tracer, baseURL string, timeout time.Duration) *CoinGeckoProvider {
	if baseURL == "" {
		baseURL = coingeckoBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(8, 7500*time.Millisecond),
	}
}

// FetchMarkets fetches one page of assets ordered as q requests.
func (p *CoinGeckoProvider) FetchMarkets(ctx context.Context, q domain.MarketQuery) ([]domain.Asset, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-markets")
	defer span.End()
	span.SetAttributes(attribute.Int("per_page", q.PerPage), attribute.Int("page", q.Page))

	params := url.Values{}
	params.Set("vs_currency", q.VsCurrency)
	params.Set("order", q.Order)
	params.Set("per_page", strconv.Itoa(q.PerPage))
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("sparkline", "false")

	// Null numeric fields decode as zero; optional metrics stay nil.
	var assets []domain.Asset
	if err := getJSON(ctx, p.client, p.limiter, p.baseURL+"/coins/markets?"+params.Encode(), "coingecko", &assets); err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}
	return assets, nil
}

// FetchHistory fetches the USD price series of assetID for the last days days.
func (p *CoinGeckoProvider) FetchHistory(ctx context.Context, assetID string, days int) ([]domain.PricePoint, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-history")
	defer span.End()
	span.SetAttributes(attribute.String("asset_id", assetID), attribute.Int("days", days))

	if days <= 0 {
		return nil, fmt.Errorf("invalid history window: %d", days)
	}

	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d",
		p.baseURL, url.PathEscape(assetID), days)

	var raw struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := getJSON(ctx, p.client, p.limiter, endpoint, "coingecko", &raw); err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", assetID, err)
	}
	if raw.Prices == nil {
		return nil, fmt.Errorf("fetch history for %s: response has no prices", assetID)
	}

	return pricePointsFromChart(raw.Prices), nil
}

// pricePointsFromChart converts [ms, price] pairs into chronological points,
// skipping malformed rows.
func pricePointsFromChart(prices [][]float64) []domain.PricePoint {
	points := make([]domain.PricePoint, 0, len(prices))
	for _, pt := range prices {
		if len(pt) < 2 {
			continue
		}
		points = append(points, domain.PricePoint{
			Time:  time.UnixMilli(int64(pt[0])).UTC(),
			Price: pt[1],
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})
	return points
}
