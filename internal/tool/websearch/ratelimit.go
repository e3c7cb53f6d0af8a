package websearch

import (
	"context"
	"sync"
	"time"
)

// rateLimiter enforces a minimum interval between consecutive calls.
type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{
		interval: interval,
	}
}

// Wait blocks until the interval since the previous call has elapsed or ctx
// is cancelled. The mutex is held while waiting, so concurrent callers are
// served one at a time.
func (r *rateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.lastCall.IsZero() {
		if remaining := r.interval - time.Since(r.lastCall); remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	r.lastCall = time.Now()
	return nil
}
