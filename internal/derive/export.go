package derive

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"

	"crypto-analytics/internal/domain"

	"github.com/shopspring/decimal"
)

var ErrNothingToExport = errors.New("no assets to export")

// CSVHeader is the header record of the coin export.
var CSVHeader = []string{
	"id", "name", "symbol", "image",
	"current_price", "market_cap", "price_change_percentage_24h", "total_volume",
	"circulating_supply", "max_supply", "ath", "atl",
}

// ExportFilename is the suggested name of the export file.
const ExportFilename = "crypto_data.csv"

// ExportCSV writes one record per asset with raw USD values. Absent optional
// fields are empty cells and every record, the last included, ends with LF.
func ExportCSV(w io.Writer, assets []domain.Asset) error {
	if len(assets) == 0 {
		return ErrNothingToExport
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, a := range assets {
		record := []string{
			a.ID,
			a.Name,
			a.Symbol,
			a.Image,
			plain(a.CurrentPrice),
			plain(a.MarketCap),
			plain(a.PriceChangePercentage24h),
			plain(a.TotalVolume),
			optional(a.CirculatingSupply),
			optional(a.MaxSupply),
			optional(a.ATH),
			optional(a.ATL),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record %s: %w", a.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func plain(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return decimal.NewFromFloat(v).String()
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return plain(*v)
}
