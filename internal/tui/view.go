package tui

import (
	"fmt"
	"math"
	"strings"

	"crypto-analytics/internal/derive"
	"crypto-analytics/internal/domain"
	"crypto-analytics/internal/service"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

func (m *Model) View() string {
	v := m.view
	sections := []string{
		m.header(v),
		m.cards(v),
		m.chart(v),
		m.coins(v),
		lipgloss.JoinHorizontal(lipgloss.Top, m.breakdown(v), m.overview(v)),
		m.footer(v),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) header(v service.View) string {
	badge := fmt.Sprintf("%s · %s", strings.ToUpper(string(v.Preference.Language)), v.Preference.Currency)
	line := lipgloss.JoinHorizontal(lipgloss.Center, titleStyle.Render(v.Labels.Title), " ", badgeStyle.Render(badge))
	if v.RateLoading {
		line += " " + m.spinner.View()
	}
	if v.RateError != "" {
		line += " " + errorStyle.Render(v.Labels.RateFailed)
	}
	return line
}

// placeholder renders the loading, error or empty state of a section.
func (m *Model) placeholder(v service.View, loading bool, errMsg string) string {
	switch {
	case loading:
		return m.spinner.View() + " " + v.Labels.Loading
	case errMsg != "":
		return errorStyle.Render(v.Labels.FetchFailed)
	default:
		return mutedStyle.Render(v.Labels.NoData)
	}
}

func (m *Model) cards(v service.View) string {
	if v.Summary == nil {
		return panelStyle.Render(m.placeholder(v, v.MarketsLoading, v.MarketsError))
	}
	rendered := make([]string, 0, 4)
	for _, c := range v.Summary.Cards() {
		value := cardValueStyle.Render(c.Value)
		switch c.Tone {
		case derive.TonePositive:
			value = cardValueStyle.Foreground(positive).Render(c.Value)
		case derive.ToneNegative:
			value = cardValueStyle.Foreground(negative).Render(c.Value)
		}
		body := cardTitleStyle.Render(c.Title) + "\n" + value
		if c.Subtitle != "" {
			body += "\n" + mutedStyle.Render(c.Subtitle)
		}
		rendered = append(rendered, cardStyle.Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) windowSelector(v service.View) string {
	parts := make([]string, 0, len(domain.HistoryWindows))
	for i, days := range domain.HistoryWindows {
		label := fmt.Sprintf("%d %s", i+1, derive.WindowLabel(v.Preference.Language, days))
		if days == v.Days {
			parts = append(parts, activeWindowStyle.Render(label))
		} else {
			parts = append(parts, inactiveWindowStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) chart(v service.View) string {
	title := panelTitleStyle.Render(v.ChartTitle)
	selector := m.windowSelector(v)
	if len(v.Chart) == 0 {
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, selector, m.placeholder(v, v.HistoryLoading, v.HistoryError)))
	}

	width := m.width - 8
	if width < 10 {
		width = 10
	}
	values := make([]float64, 0, len(v.Chart))
	for _, p := range v.Chart {
		values = append(values, p.Value)
	}
	line := accentStyle.Render(sparkline(values, width))

	var scale string
	if n := len(v.AxisTicks); n > 0 {
		scale = mutedStyle.Render(fmt.Sprintf("%s: %s … %s", v.Labels.Price, v.AxisTicks[0], v.AxisTicks[n-1]))
	}
	days := mutedStyle.Render(fmt.Sprintf("%s … %s", v.Chart[0].Label, v.Chart[len(v.Chart)-1].Label))

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, selector, line, days, scale))
}

// sparkline draws values as one row of block characters at most width wide.
func sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	sampled := values
	if len(values) > width {
		sampled = make([]float64, width)
		for i := range sampled {
			sampled[i] = values[i*len(values)/width]
		}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range sampled {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	top := len(sparkLevels) - 1
	var b strings.Builder
	for _, v := range sampled {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(top))
		}
		b.WriteRune(sparkLevels[idx])
	}
	return b.String()
}

func (m *Model) coins(v service.View) string {
	order := "↓"
	if v.Sort.Order == domain.SortAscending {
		order = "↑"
	}
	heading := fmt.Sprintf("%s %s %s", v.Labels.SortBy, derive.SortLabel(v.Preference.Language, v.Sort.Key), order)
	if !v.HasMarkets() {
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, mutedStyle.Render(heading), m.placeholder(v, v.MarketsLoading, v.MarketsError)))
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, mutedStyle.Render(heading), m.table.View()))
}

func tableColumns(v service.View) []table.Column {
	lang := v.Preference.Language
	return []table.Column{
		{Title: derive.Text(lang, derive.MsgCoin), Width: 8},
		{Title: derive.SortLabel(lang, domain.SortByName), Width: 16},
		{Title: derive.SortLabel(lang, domain.SortByPrice), Width: 18},
		{Title: derive.SortLabel(lang, domain.SortByChange24h), Width: 12},
		{Title: derive.SortLabel(lang, domain.SortByVolume), Width: 22},
	}
}

func tableRows(rows []derive.TableRow) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, table.Row{r.Symbol, r.Name, r.Price, r.Change, r.Volume})
	}
	return out
}

func (m *Model) breakdown(v service.View) string {
	title := panelTitleStyle.Render(v.Labels.TopFive)
	if len(v.Breakdown) == 0 {
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.placeholder(v, v.MarketsLoading, v.MarketsError)))
	}

	const barWidth = 20
	lines := []string{title}
	for _, s := range v.Breakdown {
		n := int(math.Round(s.Share * barWidth))
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(strings.Repeat("█", n))
		lines = append(lines, fmt.Sprintf("%-6s %s%s %5.1f%% %s",
			strings.ToUpper(s.Symbol), bar, strings.Repeat(" ", barWidth-n), s.Share*100, mutedStyle.Render(s.Label)))
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) overview(v service.View) string {
	if v.Overview == nil {
		return panelStyle.Render(m.placeholder(v, v.MarketsLoading, v.MarketsError))
	}
	lines := []string{panelTitleStyle.Render(v.Overview.Title)}
	for _, r := range v.Overview.Rows {
		lines = append(lines, fmt.Sprintf("%s %s", mutedStyle.Render(r.Label+":"), r.Value))
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) footer(v service.View) string {
	help := mutedStyle.Render(derive.Text(v.Preference.Language, derive.MsgKeyHelp))
	if m.status == "" {
		return help
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.status, help)
}
