// Package retry provides the retry-with-backoff utility shared by all
// projectors and the deletion saga.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Do runs op up to maxAttempts times, doubling the delay between attempts
// starting from baseDelay. It returns nil on the first success, the last
// error once attempts are exhausted, and the context error if cancelled
// while waiting.
func Do(ctx context.Context, maxAttempts int, baseDelay time.Duration, op func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	delay := baseDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == maxAttempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return fmt.Errorf("exhausted %d attempts: %w", maxAttempts, lastErr)
}
