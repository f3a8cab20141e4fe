package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const defaultRatePollInterval = 10 * time.Minute

// RatePoller keeps a dashboard's exchange rate fresh and warms its caches.
type RatePoller struct {
	tracer       trace.Tracer
	dashboard    DashboardRefresher
	pollInterval time.Duration
	warmDays     int
}

type DashboardRefresher interface {
	Warm(ctx context.Context, days int)
	SyncRate(ctx context.Context) error
}

func NewRatePoller(tracer trace.Tracer, dashboard DashboardRefresher, pollIntervalSecs, warmDays int) *RatePoller {
	interval := time.Duration(pollIntervalSecs) * time.Second
	if interval <= 0 {
		interval = defaultRatePollInterval
	}
	return &RatePoller{
		tracer:       tracer,
		dashboard:    dashboard,
		pollInterval: interval,
		warmDays:     warmDays,
	}
}

// Start warms the caches once, then syncs the rate immediately and on every
// tick. Blocks until ctx is cancelled.
func (p *RatePoller) Start(ctx context.Context) {
	log.Println("Rate poller starting...")

	p.dashboard.Warm(ctx, p.warmDays)
	p.pollLoop(ctx, "exchange-rate", p.pollInterval, p.syncRate)

	log.Println("Rate poller stopped")
}

func (p *RatePoller) syncRate(ctx context.Context) error {
	ctx, span := p.tracer.Start(ctx, "rate-poller.sync")
	defer span.End()

	if err := p.dashboard.SyncRate(ctx); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (p *RatePoller) pollLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		log.Printf("poller %s initial run error: %v", name, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				log.Printf("poller %s error: %v", name, err)
			}
		}
	}
}
