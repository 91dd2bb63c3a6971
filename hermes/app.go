package hermes

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/lunagic/hermes/hermesservices/cache"
	"github.com/lunagic/hermes/hermesservices/database"
	"github.com/lunagic/hermes/hermesservices/mailer"
	"github.com/lunagic/hermes/hermesservices/queue"
	"github.com/lunagic/hermes/hermesservices/storage"
)

type AppConfigFunc func(app *App) error

func WithLogger(logger *slog.Logger) AppConfigFunc {
	return func(app *App) error {
		app.logger = logger
		return nil
	}
}

// WithFetcher replaces the site client built from the configuration.
func WithFetcher(fetcher Fetcher) AppConfigFunc {
	return func(app *App) error {
		app.fetcher = fetcher
		return nil
	}
}

// WithDatabase replaces the database service built from the configuration.
func WithDatabase(service *database.Service) AppConfigFunc {
	return func(app *App) error {
		app.database = service
		return nil
	}
}

// WithMailer replaces the mailer built from the configuration.
func WithMailer(driver mailer.Driver) AppConfigFunc {
	return func(app *App) error {
		app.mailer = driver
		return nil
	}
}

// App wires the configured services into a scraper.
type App struct {
	config      AppConfig
	logger      *slog.Logger
	database    *database.Service
	fetcher     Fetcher
	storage     storage.Driver
	queueDriver queue.Driver
	cache       cache.Driver
	mailer      mailer.Driver
}

func NewApp(config AppConfig, configFuncs ...AppConfigFunc) (*App, error) {
	app := &App{
		config: config,
	}

	for _, configFunc := range configFuncs {
		if err := configFunc(app); err != nil {
			return nil, err
		}
	}

	if app.logger == nil {
		app.logger = config.Logger()
	}

	if app.database == nil {
		service, err := config.Database(database.WithLogger(app.logger))
		if err != nil {
			return nil, err
		}
		app.database = service
	}

	storageDriver, err := config.Storage()
	if err != nil {
		return nil, err
	}
	app.storage = storageDriver

	queueDriver, err := config.Queue()
	if err != nil {
		return nil, err
	}
	app.queueDriver = queueDriver

	cacheDriver, err := config.Cache()
	if err != nil {
		return nil, err
	}
	app.cache = cacheDriver

	if app.mailer == nil {
		mailerDriver, err := config.Mailer()
		if err != nil {
			return nil, err
		}
		app.mailer = mailerDriver
	}

	return app, nil
}

func (app *App) Database() *database.Service {
	return app.database
}

func (app *App) Logger() *slog.Logger {
	return app.logger
}

// Scrape runs one full scrape with the configured batches and mails the
// summary when a mailer and recipients are configured.
func (app *App) Scrape(ctx context.Context) (Summary, error) {
	summary, err := app.scrape(ctx)
	app.notify(ctx, summary, err)

	return summary, err
}

func (app *App) scrape(ctx context.Context) (Summary, error) {
	store, err := NewVehicleStore(app.database, app.config.ScrapeVehicleTable)
	if err != nil {
		return Summary{}, err
	}

	if err := store.EnsureTable(ctx); err != nil {
		return Summary{}, err
	}

	sessionConfigFuncs := []SessionConfigFunc{
		WithSessionLogger(app.logger),
	}

	if app.storage != nil {
		if err := app.storage.IsReady(ctx); err != nil {
			return Summary{}, err
		}
		sessionConfigFuncs = append(sessionConfigFuncs, WithPublisher(app.storage))
	}

	if app.queueDriver != nil {
		vehicles, err := queue.NewQueue[Vehicle](ctx, app.queueDriver, app.config.ScrapeQueueName)
		if err != nil {
			return Summary{}, err
		}
		sessionConfigFuncs = append(sessionConfigFuncs, WithVehicleQueue(vehicles))
	}

	session, err := NewSession(store, app.config.ScrapeWorkbookDir, sessionConfigFuncs...)
	if err != nil {
		return Summary{}, err
	}

	fetcher := app.fetcher
	if fetcher == nil {
		client, err := NewSiteClient(app.config.Site())
		if err != nil {
			return Summary{}, err
		}
		fetcher = client
	}

	return NewScraper(fetcher, session, app.config.Scrape(), app.logger).Run(ctx)
}

func (app *App) Close() error {
	errs := []error{app.database.Close()}
	if app.queueDriver != nil {
		errs = append(errs, app.queueDriver.Close())
	}
	if closer, ok := app.cache.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}

	return errors.Join(errs...)
}
