package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-analytics/internal/cache"
	"crypto-analytics/internal/config"
	"crypto-analytics/internal/domain"
	"crypto-analytics/internal/provider"
	"crypto-analytics/internal/service"
	"crypto-analytics/internal/tui"
	"crypto-analytics/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
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
	newWishServerFunc = wish.NewServer
	setupSignalNotify = signal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

// newSessionModel gives every SSH connection its own dashboard session, so
// toggles and window choices never leak between viewers.
func newSessionModel(ctx context.Context, tracer trace.Tracer, src service.Sources, cfg *config.Config, width, height int) *tui.Model {
	dashboard := service.NewSession(tracer, src, service.SessionConfig{
		TrackedAssetID: cfg.TrackedAssetID,
		Query:          domain.DefaultMarketQuery(cfg.MarketsPageSize),
		FetchTimeout:   cfg.HTTPTimeout(),
		Language:       cfg.DefaultLanguage,
		Currency:       cfg.DefaultCurrency,
		DefaultDays:    cfg.DefaultWindowDays,
		Location:       cfg.DisplayTimezone,
	})
	dashboard.RequestRate(ctx)

	model := tui.NewModel(ctx, dashboard, tui.Options{})
	model.SetSize(width, height)
	return model
}

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initRedisFunc(ctx, cfg.RedisURL)

	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: tracing.DefaultServiceName + "-ssh",
	})
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	sources := newSourcesFunc(tracer, cfg)

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				pty, _, _ := s.Pty()
				model := newSessionModel(s.Context(), tracer, sources, cfg, pty.Window.Width, pty.Window.Height)
				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}
