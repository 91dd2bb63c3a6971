package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lunagic/hermes/hermesservices/cache"
	"github.com/lunagic/hermes/hermesservices/database/internal/utils"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Result is the outcome of a successful statement.
type Result struct {
	Statement    Statement
	Columns      []string
	Rows         []Row
	RowsAffected int64
	LastInsertID int64
}

// ExecError is returned when the driver rejects a statement. The
// transaction has already been rolled back when it is returned.
type ExecError struct {
	Statement Statement
	Cause     error
}

func (err *ExecError) Error() string {
	return fmt.Sprintf("executing %q: %s", err.Statement.Query, err.Cause)
}

func (err *ExecError) Unwrap() error {
	return err.Cause
}

type Service struct {
	driver            Driver
	standardLibraryDB *sql.DB
	connectionMutex   sync.Mutex
	logger            *slog.Logger
	preRunFuncs       []func(ctx context.Context, statement string, args []any) error
	postRunFuncs      []func(ctx context.Context) error
	postConnectFuncs  []func(db *sql.DB) error
	schemaCache       cache.Driver
	now               func() time.Time
}

// New builds a service for the driver. The connection is opened on first
// use.
func New(
	driver Driver,
	configFuncs ...ServiceConfigFunc,
) (*Service, error) {
	if driver == nil {
		return nil, fmt.Errorf("%w: no driver", ErrConfiguration)
	}

	service := &Service{
		driver:           driver,
		logger:           slog.Default(),
		preRunFuncs:      []func(ctx context.Context, statement string, args []any) error{},
		postRunFuncs:     []func(ctx context.Context) error{},
		postConnectFuncs: []func(db *sql.DB) error{},
		now:              time.Now,
	}

	for _, configFunc := range configFuncs {
		if err := configFunc(service); err != nil {
			return nil, err
		}
	}

	return service, nil
}

func (service *Service) connection() (*sql.DB, error) {
	service.connectionMutex.Lock()
	defer service.connectionMutex.Unlock()

	if service.standardLibraryDB != nil {
		return service.standardLibraryDB, nil
	}

	db, err := service.driver.Open()
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	for _, postConnectFunc := range service.postConnectFuncs {
		if err := postConnectFunc(db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	service.standardLibraryDB = db

	return db, nil
}

func (service *Service) Ping(ctx context.Context) error {
	db, err := service.connection()
	if err != nil {
		return err
	}

	return db.PingContext(ctx)
}

// Close releases the connection if one was opened. The next statement
// opens a fresh one.
func (service *Service) Close() error {
	service.connectionMutex.Lock()
	defer service.connectionMutex.Unlock()

	if service.standardLibraryDB == nil {
		return nil
	}

	db := service.standardLibraryDB
	service.standardLibraryDB = nil

	return db.Close()
}

// Run executes raw SQL text. Statements starting with a row returning
// keyword (SELECT, SHOW, DESC, PRAGMA...) are run as queries.
func (service *Service) Run(ctx context.Context, query string) (Result, error) {
	return service.Execute(ctx, Statement{Query: query})
}

// Execute runs the statement in its own transaction.
func (service *Service) Execute(ctx context.Context, statement Statement) (Result, error) {
	preparedQuery, preparedArgs, err := utils.Prepare(statement.Query, statement.Parameters, service.driver.usesNumberedParameters())
	if err != nil {
		return Result{}, err
	}

	if preparedQuery == "" {
		return Result{}, ErrBlankQuery
	}

	db, err := service.connection()
	if err != nil {
		return Result{}, service.fail(statement, err)
	}

	for _, preRunFunc := range service.preRunFuncs {
		if err := preRunFunc(ctx, preparedQuery, preparedArgs); err != nil {
			return Result{}, err
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, service.fail(statement, err)
	}

	result := Result{
		Statement: statement,
		Columns:   []string{},
		Rows:      []Row{},
	}

	if statement.returnsRows() {
		err = service.query(ctx, tx, preparedQuery, preparedArgs, &result)
	} else {
		err = service.exec(ctx, tx, preparedQuery, preparedArgs, &result)
	}

	if err != nil {
		_ = tx.Rollback()
		return Result{}, service.fail(statement, err)
	}

	if err := tx.Commit(); err != nil {
		return Result{}, service.fail(statement, err)
	}

	for _, postRunFunc := range service.postRunFuncs {
		if err := postRunFunc(ctx); err != nil {
			return Result{}, err
		}
	}

	return result, nil
}

func (service *Service) query(ctx context.Context, tx *sql.Tx, query string, args []any, result *Result) error {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	result.Columns = columns

	for rows.Next() {
		values := make([]any, len(columns))
		scanFields := make([]any, len(columns))
		for i := range values {
			scanFields[i] = &values[i]
		}

		if err := rows.Scan(scanFields...); err != nil {
			return err
		}

		row := Row{}
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
				continue
			}
			row[column] = values[i]
		}

		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return err
	}

	result.RowsAffected = int64(len(result.Rows))

	return nil
}

func (service *Service) exec(ctx context.Context, tx *sql.Tx, query string, args []any, result *Result) error {
	sqlResult, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	if affected, err := sqlResult.RowsAffected(); err == nil {
		result.RowsAffected = affected
	}

	// lib/pq does not support LastInsertId
	if lastInsertID, err := sqlResult.LastInsertId(); err == nil {
		result.LastInsertID = lastInsertID
	}

	return nil
}

func (service *Service) fail(statement Statement, cause error) error {
	service.logger.Error("Database Run Failed",
		"statement", statement.Query,
		"err", cause,
	)

	return &ExecError{
		Statement: statement,
		Cause:     cause,
	}
}
