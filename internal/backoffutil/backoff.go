// Package backoffutil implements the capped exponential backoff used
// by consumer receive-error handling and the startup database pool
// retry (§5, §4.4), grounded on the retry shape of relay-core/src/db.rs.
// The outbox poller does not use it; it waits a fixed 1s after a
// failed tick.
package backoffutil

import (
	"context"
	"time"
)

// Backoff produces 1s, 2s, 4s, ... capped at max, resetting after
// Reset. Not safe for concurrent use — one per goroutine.
type Backoff struct {
	attempt int
	base    time.Duration
	max     time.Duration
}

func New(base, max time.Duration) *Backoff {
	return &Backoff{base: base, max: max}
}

// Next returns the delay for the current attempt and advances the
// counter.
func (b *Backoff) Next() time.Duration {
	d := b.base << b.attempt
	if d <= 0 || d > b.max {
		d = b.max
	}
	b.attempt++
	return d
}

func (b *Backoff) Reset() {
	b.attempt = 0
}

// Sleep waits out Next() or returns ctx.Err() if cancelled first.
func (b *Backoff) Sleep(ctx context.Context) error {
	t := time.NewTimer(b.Next())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryWithBackoff runs fn up to attempts times, sleeping base*2^n
// (capped at max) between attempts, honoring startup-style pool
// acquisition retry (§5: 15s timeout, 1,2,4,8s backoff, 5 attempts).
func RetryWithBackoff(ctx context.Context, attempts int, base, max time.Duration, fn func() error) error {
	b := New(base, max)
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := fn(); err != nil {
			lastErr = err
			if i < attempts-1 {
				if sleepErr := b.Sleep(ctx); sleepErr != nil {
					return sleepErr
				}
			}
			continue
		}
		return nil
	}
	return lastErr
}

// RateLimitedLogger throttles a repeated error-class log to at most
// once per window, per §4.4 ("error log rate is throttled to once per
// 30s per worker").
type RateLimitedLogger struct {
	window time.Duration
	last   time.Time
}

func NewRateLimitedLogger(window time.Duration) *RateLimitedLogger {
	return &RateLimitedLogger{window: window}
}

// Allow reports whether the caller should emit a log line now, and
// records that it did.
func (r *RateLimitedLogger) Allow() bool {
	now := time.Now()
	if now.Sub(r.last) < r.window {
		return false
	}
	r.last = now
	return true
}
