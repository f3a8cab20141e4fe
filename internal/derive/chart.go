package derive

import (
	"fmt"
	"math"
	"time"

	"crypto-analytics/internal/domain"
)

// DayLabel formats t as a day/month label in loc: "D/M" in Portuguese and
// "M/D" in English, without zero padding.
func DayLabel(t time.Time, lang domain.Language, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	if lang == domain.LanguagePortuguese {
		return fmt.Sprintf("%d/%d", t.Day(), int(t.Month()))
	}
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
}

// ChartPoint is one plotted sample in the display currency.
type ChartPoint struct {
	Label string    `json:"label"`
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// ChartSeries labels and converts a raw price history for plotting.
func ChartSeries(points []domain.PricePoint, pref domain.Preference, loc *time.Location) []ChartPoint {
	out := make([]ChartPoint, 0, len(points))
	for _, p := range points {
		out = append(out, ChartPoint{
			Label: DayLabel(p.Time, pref.Language, loc),
			Time:  p.Time,
			Value: Convert(p.Price, pref.ExchangeRate),
		})
	}
	return out
}

// ChartTitle is the heading of the price chart, e.g. "Bitcoin Price (Last 7 days)".
func ChartTitle(assetName string, days int, lang domain.Language) string {
	return Text(lang, MsgChartTitle, assetName, days)
}

// SeriesRange returns the lowest and highest plotted values.
func SeriesRange(series []ChartPoint) (lo, hi float64, ok bool) {
	if len(series) == 0 {
		return 0, 0, false
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range series {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	return lo, hi, true
}

// AxisTicks returns n evenly spaced value-axis labels from the series minimum
// to its maximum, formatted without decimals.
func AxisTicks(series []ChartPoint, n int, pref domain.Preference) []string {
	lo, hi, ok := SeriesRange(series)
	if !ok || n <= 0 {
		return nil
	}
	if n == 1 || lo == hi {
		return []string{FormatCurrency(lo, pref.Currency, pref.Language, AxisDecimals)}
	}
	step := (hi - lo) / float64(n-1)
	ticks := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ticks = append(ticks, FormatCurrency(lo+step*float64(i), pref.Currency, pref.Language, AxisDecimals))
	}
	return ticks
}

// LabelInterval is how many category labels to skip between shown ones so
// that about seven day labels fit under the chart.
func LabelInterval(points int) int {
	return points / 7
}
