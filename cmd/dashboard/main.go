package main

import (
	"context"
	"log"
	"os"

	"crypto-analytics/internal/cache"
	"crypto-analytics/internal/config"
	"crypto-analytics/internal/domain"
	"crypto-analytics/internal/provider"
	"crypto-analytics/internal/service"
	"crypto-analytics/internal/tui"
	"crypto-analytics/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	initRedisFunc  = cache.InitRedis
	initTracerFunc = tracing.InitTracer
	newSourcesFunc = func(tracer trace.Tracer, cfg *config.Config) service.Sources {
		var rdb provider.RedisClient
		if cache.Client != nil {
			rdb = cache.Client
		}
		charts := provider.NewCachingSource(
			provider.NewCoinGeckoProvider(tracer, cfg.CoinGeckoBaseURL, cfg.HTTPTimeout()),
			rdb, cfg.UpstreamCacheTTL(), "",
		)
		return service.Sources{
			Markets: charts,
			History: charts,
			Rates:   provider.NewExchangeRateProvider(tracer, cfg.ExchangeRateBaseURL, cfg.HTTPTimeout()),
		}
	}
	runProgramFunc = func(m tea.Model) error {
		_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	}
	exitFunc = os.Exit
)

// Runs one dashboard session in the current terminal. CSV exports land in
// the working directory.
func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initRedisFunc(ctx, cfg.RedisURL)

	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		Enabled:  cfg.TracingEnabled,
		Endpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	dashboard := service.NewSession(tracer, newSourcesFunc(tracer, cfg), service.SessionConfig{
		TrackedAssetID: cfg.TrackedAssetID,
		Query:          domain.DefaultMarketQuery(cfg.MarketsPageSize),
		FetchTimeout:   cfg.HTTPTimeout(),
		Language:       cfg.DefaultLanguage,
		Currency:       cfg.DefaultCurrency,
		DefaultDays:    cfg.DefaultWindowDays,
		Location:       cfg.DisplayTimezone,
	})
	dashboard.RequestRate(ctx)

	if err := runProgramFunc(tui.NewModel(ctx, dashboard, tui.Options{ExportDir: "."})); err != nil {
		log.Printf("dashboard exited with error: %v", err)
		cancel()
		exitFunc(1)
	}
}
