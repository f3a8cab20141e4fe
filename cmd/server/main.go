package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-analytics/internal/bot"
	"crypto-analytics/internal/cache"
	"crypto-analytics/internal/config"
	"crypto-analytics/internal/domain"
	"crypto-analytics/internal/handler"
	"crypto-analytics/internal/job"
	"crypto-analytics/internal/provider"
	"crypto-analytics/internal/service"
	"crypto-analytics/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "crypto-analytics/docs"
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
	newRatePollerFunc      = job.NewRatePoller
	startPollerFunc        = func(p *job.RatePoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

func sessionConfig(cfg *config.Config) service.SessionConfig {
	return service.SessionConfig{
		TrackedAssetID: cfg.TrackedAssetID,
		Query:          domain.DefaultMarketQuery(cfg.MarketsPageSize),
		FetchTimeout:   cfg.HTTPTimeout(),
		Language:       cfg.DefaultLanguage,
		Currency:       cfg.DefaultCurrency,
		DefaultDays:    cfg.DefaultWindowDays,
		Location:       cfg.DisplayTimezone,
	}
}

// @title           Crypto Analytics API
// @version         1.0
// @description     Market summary, price history and coin table of the crypto analytics dashboard.

// @host      localhost:8080
// @BasePath  /
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
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	sources := newSourcesFunc(tracer, cfg)
	sessionCfg := sessionConfig(cfg)

	// The HTTP API serves a single shared session.
	dashboard := service.NewSession(tracer, sources, sessionCfg)

	poller := newRatePollerFunc(tracer, dashboard, cfg.RatePollSecs, cfg.DefaultWindowDays)
	startPollerFunc(poller, ctx)

	telegram := bot.New(tracer, func() bot.Dashboard {
		session := service.NewSession(tracer, sources, sessionCfg)
		session.RequestRate(ctx)
		return session
	})
	startTelegramBotFunc(cfg.TelegramBotToken, telegram)

	h := newHandlerFunc(tracer, dashboard, cfg.APIKey)

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.DefaultServiceName))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
