package domain

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrInvalidAsset marks a markets batch that breaks the Asset invariants.
var ErrInvalidAsset = errors.New("invalid asset")

// Asset is a tracked cryptocurrency with its market metrics, quoted in USD.
type Asset struct {
	ID                       string   `json:"id"`
	Name                     string   `json:"name"`
	Symbol                   string   `json:"symbol"`
	Image                    string   `json:"image"`
	CurrentPrice             float64  `json:"current_price"`
	MarketCap                float64  `json:"market_cap"`
	PriceChangePercentage24h float64  `json:"price_change_percentage_24h"`
	TotalVolume              float64  `json:"total_volume"`
	CirculatingSupply        *float64 `json:"circulating_supply,omitempty"`
	MaxSupply                *float64 `json:"max_supply,omitempty"`
	ATH                      *float64 `json:"ath,omitempty"`
	ATL                      *float64 `json:"atl,omitempty"`
}

// PricePoint is one sample of the tracked asset's price history.
// The display label is derived from Time at render time and never stored.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// MarketQuery describes a markets page request.
type MarketQuery struct {
	VsCurrency string
	Order      string
	PerPage    int
	Page       int
}

// DefaultMarketQuery returns the top-N by market cap query quoted in USD.
func DefaultMarketQuery(perPage int) MarketQuery {
	return MarketQuery{
		VsCurrency: "usd",
		Order:      "market_cap_desc",
		PerPage:    perPage,
		Page:       1,
	}
}

// DefaultTrackedAssetID is the asset whose history is charted.
const DefaultTrackedAssetID = "bitcoin"

// HistoryWindows are the day windows offered by the dashboards.
var HistoryWindows = []int{7, 30, 60, 90}

// IsHistoryWindow reports whether days is one of HistoryWindows. Surfaces
// that take a window from outside accept only these.
func IsHistoryWindow(days int) bool {
	return slices.Contains(HistoryWindows, days)
}

// ValidateAssets checks identifier uniqueness and non-negative metrics.
// The 24h percentage change is allowed to be negative.
func ValidateAssets(assets []Asset) error {
	seen := make(map[string]struct{}, len(assets))
	for i, a := range assets {
		if a.ID == "" {
			return fmt.Errorf("%w: empty id at position %d", ErrInvalidAsset, i)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidAsset, a.ID)
		}
		seen[a.ID] = struct{}{}

		if a.CurrentPrice < 0 || a.MarketCap < 0 || a.TotalVolume < 0 {
			return fmt.Errorf("%w: negative metric for %q", ErrInvalidAsset, a.ID)
		}
		for _, opt := range []*float64{a.CirculatingSupply, a.MaxSupply, a.ATH, a.ATL} {
			if opt != nil && *opt < 0 {
				return fmt.Errorf("%w: negative optional metric for %q", ErrInvalidAsset, a.ID)
			}
		}
	}
	return nil
}

// CloneAssets returns a copy of assets so callers cannot mutate cached batches.
func CloneAssets(assets []Asset) []Asset {
	if assets == nil {
		return nil
	}
	out := make([]Asset, len(assets))
	copy(out, assets)
	return out
}

// ClonePoints returns a copy of points.
func ClonePoints(points []PricePoint) []PricePoint {
	if points == nil {
		return nil
	}
	out := make([]PricePoint, len(points))
	copy(out, points)
	return out
}

// CoinColors maps known CoinGecko ids to their brand colors.
var CoinColors = map[string]string{
	"bitcoin":     "#f7931a",
	"ethereum":    "#676C93",
	"tether":      "#26a17b",
	"binancecoin": "#F0B90B",
	"usd-coin":    "#2775CA",
	"ripple":      "#346AA9",
	"cardano":     "#0033ad",
	"solana":      "#00FFA3",
	"dogecoin":    "#C2A633",
	"polkadot":    "#E6007A",
}

// FallbackColor is used for ids missing from CoinColors.
const FallbackColor = "#888888"
