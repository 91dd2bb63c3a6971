package agenda

import (
	"context"
	"time"
)

// Interval runs action right away and then on every multiple of d until
// ctx ends. Action errors go to errorHandler; a non-nil return from it stops
// the loop.
func Interval(
	ctx context.Context,
	d time.Duration,
	action func(ctx context.Context) error,
	errorHandler func(ctx context.Context, err error) error,
) error {
	for {
		if err := action(ctx); err != nil {
			if err := errorHandler(ctx, err); err != nil {
				return err
			}
		}

		// Wait for the next boundary of d
		now := time.Now()
		timer := time.NewTimer(now.Add(d).Truncate(d).Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
