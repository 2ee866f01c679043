package rate

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Limiter spaces out Discord API requests by a base interval with random jitter.
// A zero interval disables pacing.
type Limiter struct {
	mu          sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
	maxJitter   time.Duration
}

// New creates a limiter. For example, interval=1s and jitter=200ms results in
// delays between 800ms and 1200ms. Jitter larger than the interval is clamped.
func New(interval, jitter time.Duration) *Limiter {
	if jitter > interval {
		jitter = interval
	}

	return &Limiter{
		lastRequest: time.Now().Add(-interval),
		minInterval: interval,
		maxJitter:   jitter,
	}
}

// Wait blocks until the next request may be sent and reserves that slot.
func (r *Limiter) Wait(ctx context.Context) error {
	if r.minInterval <= 0 {
		return ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var jitterOffset time.Duration
	if r.maxJitter > 0 {
		jitterOffset = time.Duration(rand.Int64N(int64(r.maxJitter*2))) - r.maxJitter //nolint:gosec // pacing only
	}

	waitDuration := r.minInterval + jitterOffset - time.Since(r.lastRequest)
	if waitDuration > 0 {
		timer := time.NewTimer(waitDuration)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.lastRequest = time.Now()

	return nil
}
