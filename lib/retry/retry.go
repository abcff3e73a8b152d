package retry

import (
	"context"
	"log/slog"
	"time"
)

// Policy describes how a fallible operation is retried. Backoff receives the
// 1-based number of the attempt that just failed and returns how long to
// wait before the next one.
type Policy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// Linear returns a backoff of attempt * step.
func Linear(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// Do runs op up to p.MaxAttempts times, sleeping p.Backoff between attempts.
// It returns the last error once attempts are exhausted, or ctx.Err() if the
// context dies while waiting.
func Do(ctx context.Context, p Policy, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		wait := time.Duration(0)
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		slog.WarnContext(
			ctx, "attempt failed, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"wait", wait,
			"err", lastErr,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	var out T
	err := Do(ctx, p, func() error {
		var opErr error
		out, opErr = op()
		return opErr
	})
	return out, err
}
