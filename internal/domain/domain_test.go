package domain

import (
	"errors"
	"testing"
)

func TestValidateAssets(t *testing.T) {
	neg := -1.0
	tests := []struct {
		name    string
		assets  []Asset
		wantErr bool
	}{
		{name: "empty batch", assets: nil},
		{name: "negative change allowed", assets: []Asset{{ID: "a", PriceChangePercentage24h: -12.5}}},
		{name: "duplicate id", assets: []Asset{{ID: "a"}, {ID: "a"}}, wantErr: true},
		{name: "missing id", assets: []Asset{{Name: "x"}}, wantErr: true},
		{name: "negative price", assets: []Asset{{ID: "a", CurrentPrice: -1}}, wantErr: true},
		{name: "negative ath", assets: []Asset{{ID: "a", ATH: &neg}}, wantErr: true},
	}
	for _, tt := range tests {
		err := ValidateAssets(tt.assets)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidAsset) {
				t.Fatalf("%s: expected ErrInvalidAsset, got %v", tt.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
	}
}

func TestToggles(t *testing.T) {
	if LanguagePortuguese.Toggle() != LanguageEnglish || LanguageEnglish.Toggle() != LanguagePortuguese {
		t.Fatal("language toggle is not an involution")
	}
	if CurrencyBRL.Toggle() != CurrencyUSD || CurrencyUSD.Toggle() != CurrencyBRL {
		t.Fatal("currency toggle is not an involution")
	}
	if SortAscending.Flip() != SortDescending {
		t.Fatal("sort order flip failed")
	}
}

func TestSortKeyNextWraps(t *testing.T) {
	if SortByName.Next() != SortByMarketCap {
		t.Fatalf("expected wrap to market cap, got %s", SortByName.Next())
	}
	if SortByMarketCap.Next() != SortByPrice {
		t.Fatalf("unexpected next key: %s", SortByMarketCap.Next())
	}
}

func TestParsers(t *testing.T) {
	if l, err := ParseLanguage("PT-BR"); err != nil || l != LanguagePortuguese {
		t.Fatalf("unexpected language parse: %v %v", l, err)
	}
	if _, err := ParseCurrency("EUR"); err == nil {
		t.Fatal("expected error for EUR")
	}
	if k, err := ParseSortKey("total_volume"); err != nil || k != SortByVolume {
		t.Fatalf("unexpected sort key parse: %v %v", k, err)
	}
	if _, err := ParseSortOrder("up"); err == nil {
		t.Fatal("expected error for bad order")
	}
}

func TestCloneAssetsIsIndependent(t *testing.T) {
	orig := []Asset{{ID: "a", Name: "A"}}
	c := CloneAssets(orig)
	c[0].Name = "changed"
	if orig[0].Name != "A" {
		t.Fatal("clone shares backing array")
	}
}

func TestIsHistoryWindow(t *testing.T) {
	for _, days := range HistoryWindows {
		if !IsHistoryWindow(days) {
			t.Errorf("expected %d to be a history window", days)
		}
	}
	for _, days := range []int{0, -7, 1, 45, 365, 500} {
		if IsHistoryWindow(days) {
			t.Errorf("expected %d to be rejected", days)
		}
	}
}
