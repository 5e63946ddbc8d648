package util

import (
	"context"
	"time"
)

// Retry calls fn up to maxAttempts times, doubling the wait after each
// failure starting from baseDelay. Brokerage and market-data fetches ride
// through transient HTTP errors this way. It returns nil on the first
// successful call, or the last error once the attempts are exhausted.
// Cancelling the context aborts the wait between attempts.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	delay := baseDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return lastErr
}
