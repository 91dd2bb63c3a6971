package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lunagic/hermes/hermesservices/cache"
)

type ServiceConfigFunc func(service *Service) error

// WithPostConnectFunc runs the callback once the lazy connection is opened.
func WithPostConnectFunc(callback func(db *sql.DB) error) ServiceConfigFunc {
	return func(service *Service) error {
		service.postConnectFuncs = append(service.postConnectFuncs, callback)
		return nil
	}
}

func WithPreRunFunc(preRunFunc func(ctx context.Context, statement string, args []any) error) ServiceConfigFunc {
	return func(service *Service) error {
		service.preRunFuncs = append(service.preRunFuncs, preRunFunc)
		return nil
	}
}

func WithPostRunFunc(postRunFunc func(ctx context.Context) error) ServiceConfigFunc {
	return func(service *Service) error {
		service.postRunFuncs = append(service.postRunFuncs, postRunFunc)
		return nil
	}
}

func WithLogger(logger *slog.Logger) ServiceConfigFunc {
	return func(service *Service) error {
		service.logger = logger
		service.preRunFuncs = append(service.preRunFuncs, func(ctx context.Context, statement string, args []any) error {
			logger.Info("Database Run",
				"statement", statement,
				"args", args,
			)

			return nil
		})
		return nil
	}
}

// WithSchemaCache sets where Describe keeps table snapshots.
func WithSchemaCache(driver cache.Driver) ServiceConfigFunc {
	return func(service *Service) error {
		service.schemaCache = driver
		return nil
	}
}

func WithClock(now func() time.Time) ServiceConfigFunc {
	return func(service *Service) error {
		service.now = now
		return nil
	}
}
