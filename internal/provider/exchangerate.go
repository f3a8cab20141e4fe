package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const exchangeRateBaseURL = "https://open.er-api.com"

// ExchangeRateProvider reads latest conversion tables from the open.er-api.com API.
type ExchangeRateProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewExchangeRateProvider(tracer trace.Tracer, baseURL string, timeout time.Duration) *ExchangeRateProvider {
	if baseURL == "" {
		baseURL = exchangeRateBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ExchangeRateProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		tracer:  tracer,
	}
}

// FetchRates returns the multipliers from base to every currency the API knows.
func (p *ExchangeRateProvider) FetchRates(ctx context.Context, base string) (map[string]float64, error) {
	ctx, span := p.tracer.Start(ctx, "exchange-rate.fetch-rates")
	defer span.End()

	base = strings.ToUpper(strings.TrimSpace(base))
	span.SetAttributes(attribute.String("base", base))

	var payload struct {
		Result    string             `json:"result"`
		ErrorType string             `json:"error-type"`
		BaseCode  string             `json:"base_code"`
		Rates     map[string]float64 `json:"rates"`
	}
	endpoint := strings.TrimRight(p.baseURL, "/") + "/v6/latest/" + url.PathEscape(base)
	if err := getJSON(ctx, p.client, nil, endpoint, "exchange rate", &payload); err != nil {
		return nil, fmt.Errorf("fetch rates for %s: %w", base, err)
	}
	if payload.Result != "" && payload.Result != "success" {
		return nil, fmt.Errorf("fetch rates for %s: api result %q (%s)", base, payload.Result, payload.ErrorType)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("fetch rates for %s: response has no rates", base)
	}
	return payload.Rates, nil
}
