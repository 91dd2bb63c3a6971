package hermes

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lunagic/hermes/hermestools"
)

// Fetcher returns one search result page.
type Fetcher interface {
	FetchPage(ctx context.Context, number int) (Page, error)
}

type ScrapeConfig struct {
	StartPage        int
	PagesPerWorkbook int
	LastPage         int
	MaxBatches       int
	PageDelay        time.Duration
	BatchDelay       time.Duration
	FailureDelay     time.Duration
	WorkbookDir      string
}

// Summary describes a finished run.
type Summary struct {
	RunID     string
	Pages     int
	Skipped   int
	Refused   int
	Added     int
	Workbooks []string
	Published []string
	// Exhausted is set when the site returned an empty page.
	Exhausted bool
}

type Scraper struct {
	fetcher Fetcher
	session *Session
	config  ScrapeConfig
	logger  *slog.Logger
	sleep   func(ctx context.Context, duration time.Duration) error
}

func NewScraper(fetcher Fetcher, session *Session, config ScrapeConfig, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scraper{
		fetcher: fetcher,
		session: session,
		config:  config,
		logger:  logger,
		sleep:   sleepContext,
	}
}

type pageOutcome int

const (
	pageStored pageOutcome = iota
	pageSkipped
	pageRefused
	pageEmpty
)

// Run walks the planned batches. It stops at the first empty page, after
// the last batch, or on a network failure, which is returned.
func (scraper *Scraper) Run(ctx context.Context) (Summary, error) {
	summary := Summary{
		RunID:     uuid.NewString(),
		Workbooks: []string{},
	}

	err := scraper.run(ctx, &summary)
	summary.Published = scraper.session.Published()

	return summary, err
}

func (scraper *Scraper) run(ctx context.Context, summary *Summary) error {
	logger := scraper.logger.With("run", summary.RunID)

	batches, err := PlanBatches(
		scraper.config.StartPage,
		scraper.config.PagesPerWorkbook,
		scraper.config.LastPage,
		scraper.config.MaxBatches,
	)
	if err != nil {
		return err
	}

	for _, batch := range batches {
		path, err := scraper.session.OpenBatch(batch)
		if err != nil {
			return err
		}
		summary.Workbooks = append(summary.Workbooks, path)
		logger.Info("Workbook Opened",
			"workbook", path,
			"from", batch.From,
			"end", batch.End,
		)

		exhausted, err := scraper.runBatch(ctx, logger, batch, summary)
		if err != nil {
			_ = scraper.session.CloseBatch(ctx, false)
			return err
		}

		if err := scraper.session.CloseBatch(ctx, true); err != nil {
			return err
		}

		if exhausted {
			summary.Exhausted = true
			logger.Info("No More Data", "page", summary.Pages)
			break
		}
	}

	logger.Info("Scrape Finished",
		"pages", summary.Pages,
		"added", summary.Added,
		"skipped", summary.Skipped,
		"refused", summary.Refused,
	)

	return nil
}

func (scraper *Scraper) runBatch(ctx context.Context, logger *slog.Logger, batch Batch, summary *Summary) (bool, error) {
	if err := scraper.sleep(ctx, scraper.config.BatchDelay); err != nil {
		return false, err
	}

	for number := batch.FirstPage; number < batch.End; number++ {
		outcome, added, err := scraper.scrapePage(ctx, logger, number)
		if err != nil {
			return false, err
		}

		summary.Pages++
		summary.Added += added

		switch outcome {
		case pageEmpty:
			return true, nil
		case pageSkipped:
			summary.Skipped++
		case pageRefused:
			summary.Refused++
			if err := scraper.sleep(ctx, scraper.config.FailureDelay); err != nil {
				return false, err
			}
		}

		if err := scraper.sleep(ctx, scraper.config.PageDelay); err != nil {
			return false, err
		}
	}

	return false, nil
}

func (scraper *Scraper) scrapePage(ctx context.Context, logger *slog.Logger, number int) (pageOutcome, int, error) {
	page, err := scraper.fetcher.FetchPage(ctx, number)
	if err != nil {
		if errors.Is(err, ErrDecode) {
			logger.Warn("Page Skipped", "page", number, "err", err)
			return pageSkipped, 0, nil
		}

		logger.Error("Fetch Failed", "page", number, "err", err)
		return pageSkipped, 0, err
	}

	if !page.OK() {
		logger.Warn("Site Refused Page",
			"page", number,
			"code", page.Code,
			"message", page.Message,
		)
		return pageRefused, 0, nil
	}

	if len(page.Items) == 0 {
		return pageEmpty, 0, nil
	}

	vehicles := []Vehicle{}
	for _, item := range page.Items {
		vehicle, ok, err := ParseVehicle(item)
		if err != nil {
			logger.Warn("Item Skipped", "page", number, "err", err)
			continue
		}
		if ok {
			vehicles = append(vehicles, vehicle)
		}
	}

	vehicles = hermestools.Filter(vehicles, func(vehicle Vehicle) bool {
		return vehicle.SiteID != ""
	})

	added, err := scraper.session.StoreVehicles(ctx, vehicles)
	if err != nil {
		return pageStored, added, err
	}

	logger.Info("Page Scraped",
		"page", number,
		"vehicles", len(vehicles),
		"added", added,
	)

	return pageStored, added, nil
}

func sleepContext(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
