package bot

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"crypto-analytics/internal/domain"
	"crypto-analytics/internal/service"

	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v3"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type stubSource struct {
	err error
}

func (s *stubSource) FetchMarkets(ctx context.Context, q domain.MarketQuery) ([]domain.Asset, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Asset{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", CurrentPrice: 60000, MarketCap: 750, PriceChangePercentage24h: 1.25, TotalVolume: 40},
		{ID: "ethereum", Name: "Ethereum", Symbol: "eth", CurrentPrice: 3000, MarketCap: 250, PriceChangePercentage24h: -3.5, TotalVolume: 20},
	}, nil
}

func (s *stubSource) FetchHistory(ctx context.Context, assetID string, days int) ([]domain.PricePoint, error) {
	if s.err != nil {
		return nil, s.err
	}
	start := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	return []domain.PricePoint{
		{Time: start, Price: 50000},
		{Time: start.AddDate(0, 0, days-1), Price: 55000},
	}, nil
}

func (s *stubSource) FetchRates(ctx context.Context, base string) (map[string]float64, error) {
	return map[string]float64{"USD": 1, "BRL": 5}, nil
}

func newTestBot(src *stubSource, created *atomic.Int32) *Bot {
	return New(testTracer, func() Dashboard {
		if created != nil {
			created.Add(1)
		}
		return service.NewSession(testTracer, service.Sources{Markets: src, History: src, Rates: src}, service.SessionConfig{
			TrackedAssetID: "bitcoin",
			Query:          domain.DefaultMarketQuery(10),
			FetchTimeout:   time.Second,
			Language:       domain.LanguageEnglish,
			Currency:       domain.CurrencyUSD,
			DefaultDays:    7,
			Location:       time.UTC,
		})
	})
}

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	StartTelegramBot("", newTestBot(&stubSource{}, nil))
}

func TestSessionPerChat(t *testing.T) {
	var created atomic.Int32
	b := newTestBot(&stubSource{}, &created)

	b.session(1)
	b.session(1)
	b.session(2)
	if created.Load() != 2 {
		t.Fatalf("expected one session per chat, got %d", created.Load())
	}
}

func TestSessionsEvictIdleAndLeastRecentlyUsed(t *testing.T) {
	var created atomic.Int32
	b := newTestBot(&stubSource{}, &created)
	clock := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return clock }
	b.maxSessions = 2
	b.idleTTL = time.Hour

	first := b.session(1)
	clock = clock.Add(time.Minute)
	b.session(2)
	clock = clock.Add(time.Minute)
	b.session(1)

	// Chat 2 is the least recently used when chat 3 arrives.
	clock = clock.Add(time.Minute)
	b.session(3)
	if len(b.sessions) != 2 {
		t.Fatalf("expected cap of 2 sessions, got %d", len(b.sessions))
	}
	if _, ok := b.sessions[2]; ok {
		t.Fatal("expected chat 2 to be evicted")
	}
	if b.session(1) != first {
		t.Fatal("expected chat 1 to keep its session")
	}

	clock = clock.Add(2 * time.Hour)
	b.session(4)
	if len(b.sessions) != 1 {
		t.Fatalf("expected idle sessions to be dropped, got %d", len(b.sessions))
	}
	if created.Load() != 4 {
		t.Fatalf("expected 4 sessions created, got %d", created.Load())
	}
}

func TestSummaryText(t *testing.T) {
	b := newTestBot(&stubSource{}, nil)

	got := b.SummaryText(context.Background(), 1)
	for _, want := range []string{"Crypto Analytics", "Highest Market Cap: Bitcoin", "Highest Gain (24h): 1.25% (Bitcoin)", "Highest Loss (24h): -3.50% (Ethereum)", "Total Volume: $60.00"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in:\n%s", want, got)
		}
	}
}

func TestTopText(t *testing.T) {
	b := newTestBot(&stubSource{}, nil)

	got := b.TopText(context.Background(), 1)
	if !strings.Contains(got, "1. BTC $750 (75.0%)") || !strings.Contains(got, "2. ETH $250 (25.0%)") {
		t.Fatalf("unexpected breakdown:\n%s", got)
	}
}

func TestHistoryText(t *testing.T) {
	b := newTestBot(&stubSource{}, nil)

	got := b.HistoryText(context.Background(), 1, []string{"30"})
	for _, want := range []string{"Bitcoin Price (Last 30 days)", "6/1: $50,000.00", "6/30: $55,000.00", "10.00%"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in:\n%s", want, got)
		}
	}

	for _, arg := range []string{"abc", "0", "45", "100000"} {
		got := b.HistoryText(context.Background(), 1, []string{arg})
		if !strings.HasPrefix(got, "Usage: /history") || !strings.Contains(got, "Supported: 7, 30, 60, 90") {
			t.Fatalf("%s: expected usage, got %q", arg, got)
		}
	}
}

func TestToggleTextSwitchesChatOnly(t *testing.T) {
	b := newTestBot(&stubSource{}, nil)

	got := b.ToggleText(context.Background(), 1)
	if !strings.Contains(got, "PT · BRL") {
		t.Fatalf("unexpected toggle reply %q", got)
	}
	if !strings.Contains(b.SummaryText(context.Background(), 1), "Análise de Criptomoedas") {
		t.Fatal("expected toggled chat to answer in portuguese")
	}
	if !strings.Contains(b.SummaryText(context.Background(), 2), "Crypto Analytics") {
		t.Fatal("expected other chat to keep english")
	}
}

func TestTextsOnFailure(t *testing.T) {
	b := newTestBot(&stubSource{err: errors.New("rate limited")}, nil)

	if got := b.SummaryText(context.Background(), 1); got != "Could not load data, try again" {
		t.Fatalf("unexpected failure text %q", got)
	}
}

func TestRegisterOffline(t *testing.T) {
	tb, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("offline bot: %v", err)
	}
	newTestBot(&stubSource{}, nil).Register(tb)
}
