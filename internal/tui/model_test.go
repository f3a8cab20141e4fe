package tui

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crypto-analytics/internal/derive"
	"crypto-analytics/internal/domain"
	"crypto-analytics/internal/service"

	tea "github.com/charmbracelet/bubbletea"
)

type stubDashboard struct {
	pref       domain.Preference
	assets     []domain.Asset
	loading    bool
	toggles    int
	retries    []int
	warmed     []int
	retryErr   error
	lastDays   int
	lastSort   domain.TableSort
	exportBody string
}

func (s *stubDashboard) Snapshot(ctx context.Context, days int, sort domain.TableSort) service.View {
	s.lastDays, s.lastSort = days, sort
	v := service.View{
		Preference:     s.pref,
		Labels:         derive.LabelsFor(s.pref.Language, "Bitcoin"),
		Days:           days,
		Sort:           sort,
		MarketsLoading: s.loading,
		HistoryLoading: s.loading,
		Assets:         s.assets,
		ChartTitle:     derive.ChartTitle("Bitcoin", days, s.pref.Language),
	}
	if summary, ok := derive.BuildSummary(s.assets, s.pref); ok {
		v.Summary = &summary
	}
	v.Table = derive.TableRows(derive.SortAssets(s.assets, sort.Key, sort.Order, s.pref.Language), s.pref)
	v.Breakdown = derive.TopByMarketCap(s.assets, 5, s.pref)
	return v
}

func (s *stubDashboard) ToggleBoth(ctx context.Context) domain.Preference {
	s.toggles++
	s.pref.Language = s.pref.Language.Toggle()
	s.pref.Currency = s.pref.Currency.Toggle()
	return s.pref
}

func (s *stubDashboard) Retry(ctx context.Context, days int) error {
	s.retries = append(s.retries, days)
	return s.retryErr
}

func (s *stubDashboard) Export(ctx context.Context, w io.Writer) error {
	if len(s.assets) == 0 {
		return derive.ErrNothingToExport
	}
	_, err := io.WriteString(w, s.exportBody)
	return err
}

func (s *stubDashboard) Warm(ctx context.Context, days int) {
	s.warmed = append(s.warmed, days)
}

func (s *stubDashboard) DefaultDays() int { return 7 }

func newStub() *stubDashboard {
	return &stubDashboard{
		pref: domain.Preference{Language: domain.LanguageEnglish, Currency: domain.CurrencyUSD, ExchangeRate: 1},
		assets: []domain.Asset{
			{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", CurrentPrice: 60000, MarketCap: 1000, PriceChangePercentage24h: 2, TotalVolume: 40},
			{ID: "ethereum", Name: "Ethereum", Symbol: "eth", CurrentPrice: 3000, MarketCap: 400, PriceChangePercentage24h: -1, TotalVolume: 20},
		},
		exportBody: "id,name\n",
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitWarmsDefaultWindow(t *testing.T) {
	stub := newStub()
	m := NewModel(context.Background(), stub, Options{})
	if cmd := m.Init(); cmd == nil {
		t.Fatal("expected init command")
	}
	if len(stub.warmed) != 1 || stub.warmed[0] != 7 {
		t.Fatalf("expected warm of 7 day window, got %v", stub.warmed)
	}
}

func TestWindowKeys(t *testing.T) {
	stub := newStub()
	m := NewModel(context.Background(), stub, Options{})

	m.Update(key("3"))
	if m.days != 60 || stub.lastDays != 60 {
		t.Fatalf("expected 60 day window, got model=%d snapshot=%d", m.days, stub.lastDays)
	}
	m.Update(key("1"))
	if m.days != 7 {
		t.Fatalf("expected 7 day window, got %d", m.days)
	}
}

func TestSortKeys(t *testing.T) {
	stub := newStub()
	m := NewModel(context.Background(), stub, Options{})

	m.Update(key("s"))
	if m.sort.Key != domain.SortByPrice {
		t.Fatalf("expected price sort, got %s", m.sort.Key)
	}
	m.Update(key("o"))
	if stub.lastSort.Order != domain.SortAscending {
		t.Fatalf("expected ascending order, got %s", stub.lastSort.Order)
	}
}

func TestToggleKeyRelabels(t *testing.T) {
	stub := newStub()
	m := NewModel(context.Background(), stub, Options{})

	m.Update(key("t"))
	if stub.toggles != 1 {
		t.Fatalf("expected one toggle, got %d", stub.toggles)
	}
	if !strings.Contains(m.View(), "Análise de Criptomoedas") {
		t.Fatal("expected portuguese title after toggle")
	}
}

func TestQuitKey(t *testing.T) {
	m := NewModel(context.Background(), newStub(), Options{})
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestRetryKey(t *testing.T) {
	stub := newStub()
	stub.retryErr = errors.New("still down")
	m := NewModel(context.Background(), stub, Options{})
	m.Update(key("2"))

	_, cmd := m.Update(key("r"))
	if cmd == nil {
		t.Fatal("expected retry command")
	}
	m.Update(cmd())
	if len(stub.retries) != 1 || stub.retries[0] != 30 {
		t.Fatalf("expected retry of 30 day window, got %v", stub.retries)
	}
	if m.status != "still down" {
		t.Fatalf("expected retry error in status, got %q", m.status)
	}
}

func TestExportKeyWritesFile(t *testing.T) {
	dir := t.TempDir()
	m := NewModel(context.Background(), newStub(), Options{ExportDir: dir})

	_, cmd := m.Update(key("e"))
	if cmd == nil {
		t.Fatal("expected export command")
	}
	m.Update(cmd())

	data, err := os.ReadFile(filepath.Join(dir, derive.ExportFilename))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != "id,name\n" {
		t.Fatalf("unexpected export contents %q", data)
	}
	if !strings.Contains(m.status, "Exported 2 rows") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestExportDisabledWithoutDir(t *testing.T) {
	m := NewModel(context.Background(), newStub(), Options{})
	if _, cmd := m.Update(key("e")); cmd != nil {
		t.Fatal("expected no export command")
	}
	if m.status != "Export is not available in this session" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestViewPlaceholdersWhileLoading(t *testing.T) {
	stub := newStub()
	stub.assets = nil
	stub.loading = true
	m := NewModel(context.Background(), stub, Options{})

	out := m.View()
	if !strings.Contains(out, "Loading...") {
		t.Fatalf("expected loading placeholder, got:\n%s", out)
	}
}

func TestViewRendersData(t *testing.T) {
	m := NewModel(context.Background(), newStub(), Options{})
	m.SetSize(140, 50)

	out := m.View()
	for _, want := range []string{"Crypto Analytics", "Highest Market Cap", "Bitcoin", "ETH", "Top 5 Market Cap Coins"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := sparkline([]float64{1, 2, 3}, 3); got != "▁▄█" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := sparkline([]float64{5, 5}, 10); got != "▁▁" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if got := []rune(sparkline(make([]float64, 100), 10)); len(got) != 10 {
		t.Fatalf("expected downsampled width 10, got %d", len(got))
	}
}
