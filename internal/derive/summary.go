package derive

import "crypto-analytics/internal/domain"

// Extremes are the assets highlighted by the summary cards.
type Extremes struct {
	HighestCap domain.Asset
	TopGainer  domain.Asset
	TopLoser   domain.Asset
}

// FindExtremes picks the highlighted assets of a batch ordered by market cap.
// The highest cap is the first element. Gainer and loser scan the whole set;
// on ties the earliest asset wins. It reports false for an empty batch.
func FindExtremes(assets []domain.Asset) (Extremes, bool) {
	if len(assets) == 0 {
		return Extremes{}, false
	}
	gainer, loser := 0, 0
	for i := 1; i < len(assets); i++ {
		change := assets[i].PriceChangePercentage24h
		if change > assets[gainer].PriceChangePercentage24h {
			gainer = i
		}
		if change < assets[loser].PriceChangePercentage24h {
			loser = i
		}
	}
	return Extremes{
		HighestCap: assets[0],
		TopGainer:  assets[gainer],
		TopLoser:   assets[loser],
	}, true
}

type Tone string

const (
	ToneNeutral  Tone = "neutral"
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
)

func toneOf(change float64) Tone {
	switch {
	case change > 0:
		return TonePositive
	case change < 0:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

// Card is one summary tile.
type Card struct {
	Title    string `json:"title"`
	Value    string `json:"value"`
	Subtitle string `json:"subtitle,omitempty"`
	Tone     Tone   `json:"tone"`
}

// Summary holds the four cards shown above the chart.
type Summary struct {
	HighestCap  Card `json:"highest_cap"`
	TopGainer   Card `json:"top_gainer"`
	TopLoser    Card `json:"top_loser"`
	TotalVolume Card `json:"total_volume"`
}

// Cards lists the summary tiles in display order.
func (s Summary) Cards() []Card {
	return []Card{s.HighestCap, s.TopGainer, s.TopLoser, s.TotalVolume}
}

// BuildSummary derives the summary cards. Total volume is the converted sum
// over the whole batch.
func BuildSummary(assets []domain.Asset, pref domain.Preference) (Summary, bool) {
	ext, ok := FindExtremes(assets)
	if !ok {
		return Summary{}, false
	}

	var volume float64
	for _, a := range assets {
		volume += Convert(a.TotalVolume, pref.ExchangeRate)
	}

	lang := pref.Language
	return Summary{
		HighestCap: Card{
			Title:    Text(lang, MsgHighestCap),
			Value:    ext.HighestCap.Name,
			Subtitle: FormatCurrency(Convert(ext.HighestCap.MarketCap, pref.ExchangeRate), pref.Currency, lang, AxisDecimals),
			Tone:     ToneNeutral,
		},
		TopGainer: Card{
			Title:    Text(lang, MsgHighestGain),
			Value:    FormatPercent(ext.TopGainer.PriceChangePercentage24h),
			Subtitle: ext.TopGainer.Name,
			Tone:     toneOf(ext.TopGainer.PriceChangePercentage24h),
		},
		TopLoser: Card{
			Title:    Text(lang, MsgHighestLoss),
			Value:    FormatPercent(ext.TopLoser.PriceChangePercentage24h),
			Subtitle: ext.TopLoser.Name,
			Tone:     toneOf(ext.TopLoser.PriceChangePercentage24h),
		},
		TotalVolume: Card{
			Title: Text(lang, MsgTotalVolume),
			Value: FormatCurrency(volume, pref.Currency, lang, PriceDecimals),
			Tone:  ToneNeutral,
		},
	}, true
}
