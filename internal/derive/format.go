package derive

import (
	"fmt"
	"math"

	"crypto-analytics/internal/domain"

	"golang.org/x/text/number"
)

const (
	notAvailable = "N/A"
	unbounded    = "∞"
)

// Decimal places used by the views.
const (
	PriceDecimals = 2
	AxisDecimals  = 0
)

// Convert turns a USD amount into the display currency.
func Convert(amount, rate float64) float64 {
	return amount * rate
}

func currencySymbol(cur domain.Currency, lang domain.Language) string {
	switch {
	case cur == domain.CurrencyBRL:
		return "R$"
	case lang == domain.LanguagePortuguese:
		return "US$"
	default:
		return "$"
	}
}

// FormatCurrency renders amount with the language's grouping and decimal marks,
// e.g. "$1,234.50" in English and "R$ 1.234,50" in Portuguese.
func FormatCurrency(amount float64, cur domain.Currency, lang domain.Language, decimals int) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return notAvailable
	}
	if decimals < 0 {
		decimals = 0
	}

	digits := printer(lang).Sprint(number.Decimal(math.Abs(amount), number.Scale(decimals)))
	out := currencySymbol(cur, lang)
	if lang == domain.LanguagePortuguese {
		out += " "
	}
	out += digits

	scale := math.Pow10(decimals)
	if amount < 0 && math.Round(math.Abs(amount)*scale) != 0 {
		out = "-" + out
	}
	return out
}

// FormatPercent renders a 24h change with two decimals, e.g. "-1.25%".
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatNumber renders a plain quantity with locale grouping and up to three
// fraction digits.
func FormatNumber(v float64, lang domain.Language) string {
	return printer(lang).Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// FormatAmount renders an optional quantity, N/A when absent.
func FormatAmount(v *float64, lang domain.Language) string {
	if v == nil {
		return notAvailable
	}
	return FormatNumber(*v, lang)
}

// FormatMaxSupply renders the max supply, ∞ when the asset has none.
func FormatMaxSupply(v *float64, lang domain.Language) string {
	if v == nil {
		return unbounded
	}
	return FormatNumber(*v, lang)
}

// FormatOptionalCurrency converts and formats an optional USD amount.
func FormatOptionalCurrency(v *float64, pref domain.Preference) string {
	if v == nil {
		return notAvailable
	}
	return FormatCurrency(Convert(*v, pref.ExchangeRate), pref.Currency, pref.Language, PriceDecimals)
}

// FormatPrice converts a USD amount and formats it with two decimals.
func FormatPrice(usd float64, pref domain.Preference) string {
	return FormatCurrency(Convert(usd, pref.ExchangeRate), pref.Currency, pref.Language, PriceDecimals)
}
