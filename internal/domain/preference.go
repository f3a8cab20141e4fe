package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

type Language string

const (
	LanguageEnglish    Language = "en"
	LanguagePortuguese Language = "pt"
)

// Toggle flips between the two supported languages.
func (l Language) Toggle() Language {
	if l == LanguagePortuguese {
		return LanguageEnglish
	}
	return LanguagePortuguese
}

// Tag returns the locale used for formatting and collation.
func (l Language) Tag() language.Tag {
	if l == LanguagePortuguese {
		return language.BrazilianPortuguese
	}
	return language.AmericanEnglish
}

func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "en-us":
		return LanguageEnglish, nil
	case "pt", "pt-br":
		return LanguagePortuguese, nil
	default:
		return "", fmt.Errorf("unsupported language: %q", s)
	}
}

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyBRL Currency = "BRL"
)

// BaseCurrency is the quote currency of every upstream price.
const BaseCurrency = CurrencyUSD

// Toggle flips between the two supported display currencies.
func (c Currency) Toggle() Currency {
	if c == CurrencyUSD {
		return CurrencyBRL
	}
	return CurrencyUSD
}

func ParseCurrency(s string) (Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "USD":
		return CurrencyUSD, nil
	case "BRL":
		return CurrencyBRL, nil
	default:
		return "", fmt.Errorf("unsupported currency: %q", s)
	}
}

// Preference is the display state shared by every view of a session.
type Preference struct {
	Language     Language `json:"language"`
	Currency     Currency `json:"currency"`
	ExchangeRate float64  `json:"exchange_rate"`
}

// DefaultPreference is the session default: Portuguese, BRL, no conversion applied yet.
func DefaultPreference() Preference {
	return Preference{
		Language:     LanguagePortuguese,
		Currency:     CurrencyBRL,
		ExchangeRate: 1,
	}
}
