package connector

import (
	"context"
	"time"
)

// retryConnect calls connectFn until it succeeds, the attempts run out or
// ctx ends. A nil config means a single attempt.
func retryConnect[T any](ctx context.Context, cfg *RetryConfig, connectFn func(context.Context) (T, error)) (T, error) {
	if cfg == nil {
		return connectFn(ctx)
	}

	delay := cfg.BaseDelay
	if delay == 0 {
		delay = time.Second
	}
	backoff := cfg.Backoff
	if backoff == 0 {
		backoff = 2
	}

	var (
		conn T
		err  error
	)
	for i := 0; i <= cfg.MaxRetries; i++ {
		conn, err = connectFn(ctx)
		if err == nil {
			return conn, nil
		}
		if i == cfg.MaxRetries {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			var zero T
			return zero, ctx.Err()
		case <-timer.C:
			delay = time.Duration(float64(delay) * backoff)
			if delay > cfg.MaxDelay && cfg.MaxDelay > 0 {
				delay = cfg.MaxDelay
			}
		}
	}
	return conn, err
}
