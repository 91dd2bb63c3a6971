package database_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lunagic/hermes/hermesservices/database"
	"gotest.tools/v3/assert"
)

const vehicleTable = `CREATE TABLE vehicle (
	site_id TEXT PRIMARY KEY,
	plate TEXT NOT NULL,
	length REAL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

type vehicleRow struct {
	SiteID    string  `db:"site_id,primaryKey"`
	Plate     string  `db:"plate"`
	Length    float64 `db:"length"`
	CreatedAt string  `db:"created_at,readOnly"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSQLiteService(t *testing.T, configFuncs ...database.ServiceConfigFunc) *database.Service {
	t.Helper()

	service, err := database.New(
		database.NewDriverSQLite(filepath.Join(t.TempDir(), "hermes.sqlite")),
		append([]database.ServiceConfigFunc{database.WithLogger(discardLogger())}, configFuncs...)...,
	)
	assert.NilError(t, err)
	t.Cleanup(func() {
		_ = service.Close()
	})

	_, err = service.Run(t.Context(), vehicleTable)
	assert.NilError(t, err)

	return service
}

func TestServiceSQLite(t *testing.T) {
	t.Parallel()

	service := newSQLiteService(t)
	assert.NilError(t, service.Ping(t.Context()))

	vehicles, err := service.Builder("vehicle")
	assert.NilError(t, err)

	{ // Insert reports one affected row
		values, err := database.ValuesOf(vehicleRow{SiteID: "1001", Plate: "A12345", Length: 4.2})
		assert.NilError(t, err)

		result, err := vehicles.Insert(t.Context(), values)
		assert.NilError(t, err)
		assert.Equal(t, result.RowsAffected, int64(1))
	}

	{ // A duplicate is ignored
		result, err := vehicles.Insert(t.Context(), database.Values{"site_id": "1001", "plate": "Z99999"})
		assert.NilError(t, err)
		assert.Equal(t, result.RowsAffected, int64(0))
	}

	{ // Select returns rows keyed by column
		result, err := vehicles.Select(t.Context(), database.SelectQuery{
			Columns: []string{"site_id", "plate", "length"},
			Where:   database.Where{database.Match("site_id", "=1001")},
		})
		assert.NilError(t, err)
		assert.DeepEqual(t, result.Columns, []string{"site_id", "plate", "length"})
		assert.Equal(t, result.RowsAffected, int64(1))

		rows, err := database.ScanRows[vehicleRow](result.Rows)
		assert.NilError(t, err)
		assert.DeepEqual(t, rows, []vehicleRow{{SiteID: "1001", Plate: "A12345", Length: 4.2}})
	}

	{ // Update
		result, err := vehicles.Update(t.Context(), database.UpdateQuery{
			Set:   database.Values{"plate": "B67890"},
			Where: database.Where{database.Match("site_id", database.Equal("1001"))},
		})
		assert.NilError(t, err)
		assert.Equal(t, result.RowsAffected, int64(1))
	}

	{ // Upsert overwrites the existing row
		result, err := vehicles.WithConflictColumns("site_id").Upsert(t.Context(), database.Values{
			"site_id": "1001",
			"plate":   "C13579",
			"length":  9.6,
		})
		assert.NilError(t, err)
		assert.Equal(t, result.RowsAffected, int64(1))

		selected, err := vehicles.Select(t.Context(), database.SelectQuery{Columns: []string{"plate"}})
		assert.NilError(t, err)
		assert.Equal(t, selected.Rows[0]["plate"], "C13579")
	}

	{ // Delete
		result, err := vehicles.Delete(t.Context(), database.DeleteQuery{
			Where: database.Where{database.Match("length", ">5")},
		})
		assert.NilError(t, err)
		assert.Equal(t, result.RowsAffected, int64(1))
	}

	{ // Raw SQL classified as a query
		result, err := service.Run(t.Context(), "SELECT COUNT(*) AS n FROM vehicle")
		assert.NilError(t, err)
		assert.Equal(t, result.Rows[0]["n"], int64(0))
	}
}

func TestServiceRawAndNullConditions(t *testing.T) {
	t.Parallel()

	service := newSQLiteService(t)

	vehicles, err := service.Builder("vehicle")
	assert.NilError(t, err)

	_, err = vehicles.Insert(t.Context(), database.Values{"site_id": "7", "plate": "A:p1"})
	assert.NilError(t, err)
	_, err = vehicles.Insert(t.Context(), database.Values{"site_id": "8", "plate": "B2", "length": 4.2})
	assert.NilError(t, err)

	{ // Placeholder-like text inside a raw literal is not bound
		result, err := vehicles.Select(t.Context(), database.SelectQuery{
			Columns: []string{"site_id"},
			Where: database.Where{
				database.Raw("plate = 'A:p1'"),
				database.Match("site_id", "=7"),
			},
		})
		assert.NilError(t, err)
		assert.Equal(t, len(result.Rows), 1)
	}

	{ // A nil value matches NULL columns only
		result, err := vehicles.Delete(t.Context(), database.DeleteQuery{
			Where: database.Where{database.Match("length", nil)},
		})
		assert.NilError(t, err)
		assert.Equal(t, result.RowsAffected, int64(1))

		result, err = service.Run(t.Context(), "SELECT site_id FROM vehicle")
		assert.NilError(t, err)
		assert.Equal(t, result.Rows[0]["site_id"], "8")
	}
}

func TestServiceReopensAfterClose(t *testing.T) {
	t.Parallel()

	service := newSQLiteService(t)

	assert.NilError(t, service.Close())
	assert.NilError(t, service.Close())

	result, err := service.Run(t.Context(), "SELECT COUNT(*) AS n FROM vehicle")
	assert.NilError(t, err)
	assert.Equal(t, result.Rows[0]["n"], int64(0))
}

func TestServiceExecError(t *testing.T) {
	t.Parallel()

	service := newSQLiteService(t)

	_, err := service.Run(t.Context(), "INSERT INTO missing_table(a) values(1)")

	var execErr *database.ExecError
	assert.Assert(t, errors.As(err, &execErr))
	assert.Equal(t, execErr.Statement.Query, "INSERT INTO missing_table(a) values(1)")
	assert.ErrorContains(t, err, "missing_table")

	{ // The connection is still usable
		result, err := service.Run(t.Context(), "SELECT 1 AS one")
		assert.NilError(t, err)
		assert.Equal(t, result.Rows[0]["one"], int64(1))
	}

	{ // Blank statements never reach the driver
		_, err := service.Run(t.Context(), "   ")
		assert.ErrorIs(t, err, database.ErrBlankQuery)
	}
}

func TestServiceHooks(t *testing.T) {
	t.Parallel()

	statements := []string{}
	postRuns := 0
	connects := 0

	service := newSQLiteService(t,
		database.WithPreRunFunc(func(ctx context.Context, statement string, args []any) error {
			statements = append(statements, statement)
			return nil
		}),
		database.WithPostRunFunc(func(ctx context.Context) error {
			postRuns++
			return nil
		}),
	)

	vehicles, err := service.Builder("vehicle")
	assert.NilError(t, err)

	_, err = vehicles.Insert(t.Context(), database.Values{"site_id": "1", "plate": "A1"})
	assert.NilError(t, err)

	// The first statement is the table setup
	assert.Equal(t, len(statements), 2)
	assert.Equal(t, statements[1], "INSERT OR IGNORE INTO vehicle(plate,site_id) values(?,?)")
	assert.Equal(t, postRuns, 2)

	{ // Post connect funcs run once on the lazy connection
		lazy, err := database.New(
			database.NewDriverSQLite(filepath.Join(t.TempDir(), "lazy.sqlite")),
			database.WithLogger(discardLogger()),
			database.WithPostConnectFunc(func(db *sql.DB) error {
				connects++
				return nil
			}),
		)
		assert.NilError(t, err)
		assert.Equal(t, connects, 0)

		_, err = lazy.Run(t.Context(), "SELECT 1")
		assert.NilError(t, err)
		_, err = lazy.Run(t.Context(), "SELECT 2")
		assert.NilError(t, err)
		assert.Equal(t, connects, 1)
		assert.NilError(t, lazy.Close())
	}

	{ // A failing pre run hook stops the statement
		stop := errors.New("read only")
		blocked := newSQLiteService(t, database.WithPreRunFunc(func(ctx context.Context, statement string, args []any) error {
			if strings.HasPrefix(statement, "DELETE") {
				return stop
			}
			return nil
		}))

		_, err := blocked.Run(t.Context(), "DELETE FROM vehicle")
		assert.ErrorIs(t, err, stop)
	}
}
