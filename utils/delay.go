package utils

import (
	"context"
	"math/rand"
	"time"
)

// RandomDelay sleeps for a uniformly random duration in [min, max] and
// returns the duration it picked. It returns early with ctx.Err() if ctx is
// done first.
func RandomDelay(ctx context.Context, min, max time.Duration) (time.Duration, error) {
	d := min
	if diff := max - min; diff > 0 {
		d += time.Duration(rand.Int63n(int64(diff + 1)))
	}
	return d, Sleep(ctx, d)
}

// Sleep is time.Sleep that honours ctx.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
