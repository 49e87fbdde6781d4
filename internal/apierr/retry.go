package apierr

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig holds retry parameters for exponential backoff.
//
// Invalid values are normalized: MaxRetries < 0 becomes 0 (single attempt),
// BaseDelay <= 0 becomes 1ms, MaxDelay <= 0 becomes BaseDelay.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	// OnRetry, when set, is called before each retry with the attempt number
	// about to run (starting at 1), the delay before it and the error that caused it.
	OnRetry func(attempt int, delay time.Duration, err error)
}

func (c *RetryConfig) normalize() {
	c.MaxRetries = max(c.MaxRetries, 0)
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = c.BaseDelay
	}
}

// Delay returns the wait before retry attempt n (1-based): BaseDelay doubled
// n-1 times, capped at MaxDelay.
func (c RetryConfig) Delay(n int) time.Duration {
	c.normalize()
	d := c.BaseDelay
	for i := 1; i < n && d < c.MaxDelay; i++ {
		d *= 2
	}
	return min(d, c.MaxDelay)
}

// RetryWithBackoff calls fn until it succeeds, shouldRetry rejects its error,
// MaxRetries retries are spent, or ctx is done.
func RetryWithBackoff[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func() (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	cfg.normalize()

	var zero T
	for retries := 0; ; retries++ {
		result, err := fn()
		switch {
		case err == nil:
			return result, nil
		case !shouldRetry(err):
			return zero, err
		case retries == cfg.MaxRetries:
			return zero, fmt.Errorf("giving up after %d retries: %w", cfg.MaxRetries, err)
		}

		delay := cfg.Delay(retries + 1)
		if cfg.OnRetry != nil {
			cfg.OnRetry(retries+1, delay, err)
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
