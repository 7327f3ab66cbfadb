package utils

import (
	"context"
	"fmt"
	"time"
)

// Retry runs fn up to attempts times, stopping at the first success.
// Between failures it waits base, 2*base, 4*base, ... and gives up early if
// ctx is done.
//
//	err := utils.Retry(ctx, 3, time.Second, func(attempt int) error {
//	    return openNextPage(ctx)
//	})
func Retry(ctx context.Context, attempts int, base time.Duration, fn func(attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		wait := base * time.Duration(1<<uint(attempt-1))
		Warn("Attempt %d/%d failed: %v, retrying in %v", attempt, attempts, lastErr, wait)
		if err := Sleep(ctx, wait); err != nil {
			return fmt.Errorf("retry interrupted after %d attempts: %w", attempt, lastErr)
		}
	}

	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}
