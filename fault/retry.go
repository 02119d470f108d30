package fault

import (
	"context"
	"time"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
)

// Option configures a Retry call.
type Option func(*retryConfig)

type retryConfig struct {
	maxAttempts int
	baseDelay   time.Duration
}

// WithMaxAttempts overrides the attempt budget (default 3).
func WithMaxAttempts(n int) Option {
	return func(c *retryConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBaseDelay overrides the first backoff delay (default 1s).
func WithBaseDelay(d time.Duration) Option {
	return func(c *retryConfig) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

// Retry runs op until it succeeds, the fault is not retryable, the attempt
// budget is exhausted, or ctx is cancelled. Failures are classified via
// [Classify]; the wait before attempt n+1 is baseDelay * 2^n. On exhaustion
// the last classified fault is returned. The wait suspends only this call,
// and cancelling ctx aborts it immediately.
func Retry[T any](ctx context.Context, op func(context.Context) (T, error), opts ...Option) (T, error) {
	cfg := retryConfig{
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var zero T
	for attempt := 0; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}

		f := Classify(err)
		if !f.Retryable || attempt >= cfg.maxAttempts-1 {
			return zero, f
		}

		timer := time.NewTimer(cfg.baseDelay << attempt)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
