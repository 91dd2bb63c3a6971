package hermes

import (
	"context"
	"errors"
	"time"

	"github.com/lunagic/hermes/hermes/internal/agenda"
	"github.com/lunagic/hermes/hermesservices/cache"
)

const (
	scheduleLease   = "scrape"
	lastScrapeKey   = "last-scrape"
	lastScrapeCache = "hermes-schedule"
)

// Watch scrapes every interval until ctx ends. Hosts sharing a cache take
// turns: only the lease holder scrapes, and a run is skipped when any host
// started one less than half an interval ago. report, when set, receives every
// run's outcome.
func (app *App) Watch(ctx context.Context, interval time.Duration, report func(Summary, error)) error {
	if interval <= 0 {
		return errors.New("watch interval must be positive")
	}

	lease := agenda.NewLease(app.cache, scheduleLease, interval*2, app.config.ScrapeLeaseSettle)
	lastRuns := cache.NewRepository[string, time.Time](app.cache, lastScrapeCache)

	logger := app.logger.With("holder", lease.Holder())
	defer func() {
		_ = lease.Release(context.WithoutCancel(ctx))
	}()

	err := agenda.Interval(ctx, interval,
		func(ctx context.Context) error {
			held, err := lease.Hold(ctx)
			if err != nil || !held {
				return err
			}

			lastRan, err := lastRuns.Get(ctx, lastScrapeKey)
			if err == nil && time.Since(lastRan) < interval/2 {
				logger.Info("Scrape Not Due", "last", lastRan)
				return nil
			}

			if err := lastRuns.Set(ctx, lastScrapeKey, time.Now(), interval*2); err != nil {
				return err
			}

			summary, runErr := app.Scrape(ctx)
			if report != nil {
				report(summary, runErr)
			}

			return runErr
		},
		func(ctx context.Context, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			// A failed run waits for the next tick
			logger.Error("Scheduled Scrape Failed", "err", err)
			return nil
		},
	)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
