package derive

import (
	"strings"

	"crypto-analytics/internal/domain"
)

// TableRow is one formatted row of the coin table.
type TableRow struct {
	ID        string `json:"id"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Price     string `json:"price"`
	Change    string `json:"change"`
	Tone      Tone   `json:"tone"`
	Volume    string `json:"volume"`
	MarketCap string `json:"market_cap"`
}

// TableRows formats already sorted assets for the coin table.
func TableRows(assets []domain.Asset, pref domain.Preference) []TableRow {
	out := make([]TableRow, 0, len(assets))
	for _, a := range assets {
		out = append(out, TableRow{
			ID:        a.ID,
			Symbol:    strings.ToUpper(a.Symbol),
			Name:      a.Name,
			Image:     a.Image,
			Price:     FormatPrice(a.CurrentPrice, pref),
			Change:    FormatPercent(a.PriceChangePercentage24h),
			Tone:      toneOf(a.PriceChangePercentage24h),
			Volume:    FormatCurrency(Convert(a.TotalVolume, pref.ExchangeRate), pref.Currency, pref.Language, AxisDecimals),
			MarketCap: FormatCurrency(Convert(a.MarketCap, pref.ExchangeRate), pref.Currency, pref.Language, AxisDecimals),
		})
	}
	return out
}

// DetailRow is a caption and value pair of the overview panel.
type DetailRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Overview describes the highest market cap asset.
type Overview struct {
	Title string      `json:"title"`
	Image string      `json:"image"`
	Rows  []DetailRow `json:"rows"`
}

// OverviewRows builds the overview panel of asset with converted values.
func OverviewRows(asset domain.Asset, pref domain.Preference) Overview {
	lang := pref.Language
	return Overview{
		Title: Text(lang, MsgOverview, asset.Name),
		Image: asset.Image,
		Rows: []DetailRow{
			{Label: Text(lang, MsgMarketCap), Value: FormatPrice(asset.MarketCap, pref)},
			{Label: Text(lang, MsgVolume24h), Value: FormatPrice(asset.TotalVolume, pref)},
			{Label: Text(lang, MsgCirculating), Value: FormatAmount(asset.CirculatingSupply, lang)},
			{Label: Text(lang, MsgMaxSupply), Value: FormatMaxSupply(asset.MaxSupply, lang)},
			{Label: Text(lang, MsgATH), Value: FormatOptionalCurrency(asset.ATH, pref)},
			{Label: Text(lang, MsgATL), Value: FormatOptionalCurrency(asset.ATL, pref)},
		},
	}
}
