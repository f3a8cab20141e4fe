package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter paces outbound requests with a token bucket that refills one
// token per interval up to burst.
type RateLimiter struct {
	mu       sync.Mutex
	burst    float64
	interval time.Duration
	tokens   float64
	last     time.Time
	now      func() time.Time
}

func NewRateLimiter(burst int, interval time.Duration) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		burst:    float64(burst),
		interval: interval,
		tokens:   float64(burst),
		last:     time.Now(),
		now:      time.Now,
	}
}

// Wait blocks until a token is taken or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		delay := r.reserve()
		if delay <= 0 {
			return nil
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve takes a token when one is available and otherwise returns the time
// until the next one accrues.
func (r *RateLimiter) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.interval > 0 {
		r.tokens += float64(now.Sub(r.last)) / float64(r.interval)
	} else {
		r.tokens = r.burst
	}
	if r.tokens > r.burst {
		r.tokens = r.burst
	}
	r.last = now

	if r.tokens >= 1 {
		r.tokens--
		return 0
	}
	return time.Duration((1 - r.tokens) * float64(r.interval))
}
