package derive

import (
	"sort"

	"crypto-analytics/internal/domain"

	"golang.org/x/text/collate"
)

// SortAssets returns a sorted copy of assets. Names compare with the
// language's collation, the rest numerically. Assets with equal keys keep
// their relative order in both directions; an unknown key leaves the order
// unchanged.
func SortAssets(assets []domain.Asset, key domain.SortKey, order domain.SortOrder, lang domain.Language) []domain.Asset {
	out := domain.CloneAssets(assets)
	if len(out) < 2 {
		return out
	}

	var cmp func(a, b domain.Asset) int
	switch key {
	case domain.SortByMarketCap:
		cmp = numeric(func(a domain.Asset) float64 { return a.MarketCap })
	case domain.SortByPrice:
		cmp = numeric(func(a domain.Asset) float64 { return a.CurrentPrice })
	case domain.SortByChange24h:
		cmp = numeric(func(a domain.Asset) float64 { return a.PriceChangePercentage24h })
	case domain.SortByVolume:
		cmp = numeric(func(a domain.Asset) float64 { return a.TotalVolume })
	case domain.SortByName:
		collator := collate.New(lang.Tag())
		cmp = func(a, b domain.Asset) int { return collator.CompareString(a.Name, b.Name) }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if order == domain.SortDescending {
			return c > 0
		}
		return c < 0
	})
	return out
}

func numeric(field func(domain.Asset) float64) func(a, b domain.Asset) int {
	return func(a, b domain.Asset) int {
		x, y := field(a), field(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	}
}
