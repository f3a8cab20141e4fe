package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"crypto-analytics/internal/domain"
)

type Config struct {
	CoinGeckoBaseURL    string
	ExchangeRateBaseURL string
	TrackedAssetID      string
	MarketsPageSize     int
	HTTPTimeoutSecs     int
	RatePollSecs        int

	DefaultLanguage   domain.Language
	DefaultCurrency   domain.Currency
	DefaultWindowDays int
	DisplayTimezone   *time.Location

	RedisURL             string
	UpstreamCacheTTLSecs int

	HTTPPort         int
	SSHPort          int
	SSHHostKeyPath   string
	TelegramBotToken string
	APIKey           string

	TracingEnabled bool
	OTLPEndpoint   string
}

func Load() *Config {
	cfg := &Config{
		CoinGeckoBaseURL:    strings.TrimRight(strings.TrimSpace(os.Getenv("COINGECKO_BASE_URL")), "/"),
		ExchangeRateBaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("EXCHANGE_RATE_BASE_URL")), "/"),
		RedisURL:            strings.TrimSpace(os.Getenv("REDIS_URL")),
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		APIKey:              strings.TrimSpace(os.Getenv("API_KEY")),
	}

	if cfg.CoinGeckoBaseURL == "" {
		cfg.CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.ExchangeRateBaseURL == "" {
		cfg.ExchangeRateBaseURL = "https://open.er-api.com"
	}
	if cfg.RedisURL == "" {
		log.Println("REDIS_URL not set, upstream response cache disabled")
	}
	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, bot will be disabled")
	}

	cfg.TrackedAssetID = strings.ToLower(strings.TrimSpace(os.Getenv("TRACKED_ASSET_ID")))
	if cfg.TrackedAssetID == "" {
		cfg.TrackedAssetID = domain.DefaultTrackedAssetID
	}

	cfg.MarketsPageSize = positiveInt("MARKETS_PAGE_SIZE", 10)
	if cfg.MarketsPageSize > 250 {
		log.Printf("Warning: MARKETS_PAGE_SIZE=%d above provider maximum, using 250", cfg.MarketsPageSize)
		cfg.MarketsPageSize = 250
	}
	cfg.HTTPTimeoutSecs = positiveInt("HTTP_TIMEOUT_SECS", 15)
	cfg.RatePollSecs = positiveInt("RATE_POLL_SECS", 600)
	cfg.DefaultWindowDays = positiveInt("DEFAULT_WINDOW_DAYS", 7)
	cfg.UpstreamCacheTTLSecs = positiveInt("UPSTREAM_CACHE_TTL_SECS", 60)
	cfg.HTTPPort = positiveInt("HTTP_PORT", 8080)
	cfg.SSHPort = positiveInt("SSH_PORT", 23234)

	cfg.DefaultLanguage = domain.LanguagePortuguese
	if v := strings.TrimSpace(os.Getenv("DEFAULT_LANGUAGE")); v != "" {
		if lang, err := domain.ParseLanguage(v); err == nil {
			cfg.DefaultLanguage = lang
		} else {
			log.Printf("Warning: %v, defaulting to %s", err, cfg.DefaultLanguage)
		}
	}

	cfg.DefaultCurrency = domain.CurrencyBRL
	if v := strings.TrimSpace(os.Getenv("DEFAULT_CURRENCY")); v != "" {
		if cur, err := domain.ParseCurrency(v); err == nil {
			cfg.DefaultCurrency = cur
		} else {
			log.Printf("Warning: %v, defaulting to %s", err, cfg.DefaultCurrency)
		}
	}

	cfg.DisplayTimezone = time.Local
	if v := strings.TrimSpace(os.Getenv("DISPLAY_TIMEZONE")); v != "" {
		if loc, err := time.LoadLocation(v); err == nil {
			cfg.DisplayTimezone = loc
		} else {
			log.Printf("Warning: unknown DISPLAY_TIMEZONE=%q, using local time", v)
		}
	}

	cfg.TracingEnabled = !strings.EqualFold(strings.TrimSpace(os.Getenv("TRACING_ENABLED")), "false")
	cfg.OTLPEndpoint = strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	if cfg.OTLPEndpoint == "" {
		cfg.OTLPEndpoint = "localhost:4317"
	}

	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/id_ed25519"
	}

	return cfg
}

// HTTPTimeout is the per-fetch deadline applied by the caches and providers.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSecs) * time.Second
}

func (c *Config) UpstreamCacheTTL() time.Duration {
	return time.Duration(c.UpstreamCacheTTLSecs) * time.Second
}

func positiveInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, defaulting to %d", key, v, def)
		return def
	}
	return n
}
