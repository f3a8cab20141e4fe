package derive

import "crypto-analytics/internal/domain"

// Slice is one segment of the market cap breakdown.
type Slice struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Symbol string  `json:"symbol"`
	Value  float64 `json:"value"`
	Share  float64 `json:"share"`
	Color  string  `json:"color"`
	Label  string  `json:"label"`
}

// ColorFor returns the brand color of a known asset id.
func ColorFor(id string) string {
	if c, ok := domain.CoinColors[id]; ok {
		return c
	}
	return domain.FallbackColor
}

// TopByMarketCap takes the first n assets as given and reports each one's
// converted market cap and share of the n-asset total.
func TopByMarketCap(assets []domain.Asset, n int, pref domain.Preference) []Slice {
	if n > len(assets) {
		n = len(assets)
	}
	if n <= 0 {
		return nil
	}

	top := assets[:n]
	var total float64
	for _, a := range top {
		total += Convert(a.MarketCap, pref.ExchangeRate)
	}

	out := make([]Slice, 0, n)
	for _, a := range top {
		value := Convert(a.MarketCap, pref.ExchangeRate)
		var share float64
		if total > 0 {
			share = value / total
		}
		out = append(out, Slice{
			ID:     a.ID,
			Name:   a.Name,
			Symbol: a.Symbol,
			Value:  value,
			Share:  share,
			Color:  ColorFor(a.ID),
			Label:  FormatCurrency(value, pref.Currency, pref.Language, AxisDecimals),
		})
	}
	return out
}
