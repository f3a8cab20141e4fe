package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"crypto-analytics/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrRateNotFound = errors.New("exchange rate not found")

const defaultRateTimeout = 15 * time.Second

// RateProvider returns the multipliers from base to every known currency.
type RateProvider interface {
	FetchRates(ctx context.Context, base string) (map[string]float64, error)
}

// RateResult is the outcome of an exchange rate request.
type RateResult struct {
	From    domain.Currency
	To      domain.Currency
	Rate    float64
	Loading bool
	Err     error
}

// OK reports whether the result carries a usable rate.
func (r RateResult) OK() bool {
	return !r.Loading && r.Err == nil && r.Rate > 0
}

// RateFetcher fetches exchange rates on demand. Rates are never cached;
// every request reaches the provider.
type RateFetcher struct {
	tracer   trace.Tracer
	provider RateProvider
	timeout  time.Duration

	mu     sync.Mutex
	seq    uint64
	status RateResult
}

func NewRateFetcher(tracer trace.Tracer, provider RateProvider, timeout time.Duration) *RateFetcher {
	if timeout <= 0 {
		timeout = defaultRateTimeout
	}
	return &RateFetcher{
		tracer:   tracer,
		provider: provider,
		timeout:  timeout,
	}
}

// Fetch returns the multiplier converting from into to.
func (f *RateFetcher) Fetch(ctx context.Context, from, to domain.Currency) (float64, error) {
	ctx, span := f.tracer.Start(ctx, "rate-fetcher.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("from", string(from)), attribute.String("to", string(to)))

	rates, err := f.provider.FetchRates(ctx, string(from))
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("fetch %s/%s rate: %w", from, to, err)
	}
	rate, ok := rates[string(to)]
	if !ok || rate <= 0 {
		span.RecordError(ErrRateNotFound)
		return 0, fmt.Errorf("%w: %s/%s", ErrRateNotFound, from, to)
	}
	return rate, nil
}

// Request fetches the rate in the background. The returned channel yields
// exactly one result and is then closed. Status reflects the latest request
// only; results of superseded requests are delivered but not recorded.
func (f *RateFetcher) Request(ctx context.Context, from, to domain.Currency) <-chan RateResult {
	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.status = RateResult{From: from, To: to, Loading: true}
	f.mu.Unlock()

	out := make(chan RateResult, 1)
	go func() {
		defer close(out)

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()

		rate, err := f.Fetch(fetchCtx, from, to)
		res := RateResult{From: from, To: to, Rate: rate, Err: err}
		if err != nil {
			res.Rate = 0
			log.Printf("exchange rate request %s/%s failed: %v", from, to, err)
		}

		f.mu.Lock()
		if f.seq == seq {
			f.status = res
		}
		f.mu.Unlock()

		out <- res
	}()
	return out
}

// Status returns the state of the most recent request.
func (f *RateFetcher) Status() RateResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}
