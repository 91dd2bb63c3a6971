package database_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lunagic/hermes/hermesservices/cache"
	"github.com/lunagic/hermes/hermesservices/database"
	"gotest.tools/v3/assert"
)

type fakeClock struct {
	now time.Time
}

func (clock *fakeClock) Now() time.Time {
	return clock.now
}

func describeCounter(counter *int) database.ServiceConfigFunc {
	return database.WithPreRunFunc(func(ctx context.Context, statement string, args []any) error {
		if strings.HasPrefix(statement, "PRAGMA table_info") {
			*counter++
		}
		return nil
	})
}

func TestDescribeMissingTable(t *testing.T) {
	t.Parallel()

	introspections := 0

	schemaCache, err := cache.NewDriverMemory()
	assert.NilError(t, err)

	service := newSQLiteService(t,
		database.WithSchemaCache(schemaCache),
		describeCounter(&introspections),
	)

	{ // A missing table is an error and nothing is cached
		_, err := service.Describe(t.Context(), "later", time.Hour, false)
		assert.ErrorIs(t, err, database.ErrConfiguration)
		assert.ErrorContains(t, err, "table later not found")

		_, err = schemaCache.Get(t.Context(), "later")
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}

	{ // Creating the table is picked up within the ttl
		_, err := service.Run(t.Context(), "CREATE TABLE later (id INTEGER PRIMARY KEY, note TEXT)")
		assert.NilError(t, err)

		schema, err := service.Describe(t.Context(), "later", time.Hour, false)
		assert.NilError(t, err)
		assert.Equal(t, len(schema), 2)
		assert.Equal(t, introspections, 2)
	}
}

func TestDescribeCaches(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	introspections := 0

	schemaCache, err := cache.NewDriverMemory()
	assert.NilError(t, err)

	service := newSQLiteService(t,
		database.WithSchemaCache(schemaCache),
		database.WithClock(clock.Now),
		describeCounter(&introspections),
	)

	{ // First call introspects
		schema, err := service.Describe(t.Context(), "vehicle", time.Hour, false)
		assert.NilError(t, err)
		assert.Equal(t, introspections, 1)

		assert.Equal(t, len(schema), 4)
		assert.Equal(t, schema["site_id"].Key, "PRI")
		assert.Equal(t, schema["site_id"].Type, "TEXT")
		assert.Equal(t, schema["plate"].Null, "NO")
		assert.Equal(t, schema["length"].Null, "YES")
		assert.Assert(t, schema["length"].Default == nil)
		assert.Equal(t, *schema["created_at"].Default, "CURRENT_TIMESTAMP")
	}

	{ // Second call within the TTL is served from the cache
		_, err := service.Describe(t.Context(), "vehicle", time.Hour, false)
		assert.NilError(t, err)
		assert.Equal(t, introspections, 1)
	}

	{ // The snapshot carries its own timestamp and lifetime
		raw, err := schemaCache.Get(t.Context(), "vehicle")
		assert.NilError(t, err)

		snapshot := map[string]any{}
		assert.NilError(t, json.Unmarshal([]byte(raw), &snapshot))
		assert.Equal(t, snapshot["overtime"], float64(3600))
		assert.Equal(t, snapshot["timestamp"], float64(clock.now.Unix()))
		assert.Equal(t, snapshot["site_id"].(map[string]any)["Key"], "PRI")
	}

	{ // Expired snapshots are rebuilt
		clock.now = clock.now.Add(2 * time.Hour)

		_, err := service.Describe(t.Context(), "vehicle", time.Hour, false)
		assert.NilError(t, err)
		assert.Equal(t, introspections, 2)
	}

	{ // Forced refresh ignores a fresh snapshot
		_, err := service.Describe(t.Context(), "vehicle", time.Hour, true)
		assert.NilError(t, err)
		assert.Equal(t, introspections, 3)
	}

	{ // Unreadable snapshots are rebuilt
		assert.NilError(t, schemaCache.Set(t.Context(), "vehicle", "not json", time.Hour))

		_, err := service.Describe(t.Context(), "vehicle", time.Hour, false)
		assert.NilError(t, err)
		assert.Equal(t, introspections, 4)
	}

	{ // Fields reduces the description
		fields, err := service.Fields(t.Context(), "vehicle", time.Hour, false)
		assert.NilError(t, err)
		assert.Equal(t, introspections, 4)
		assert.DeepEqual(t, fields["plate"], database.FieldInfo{
			Field: "plate",
			Key:   "",
			Null:  "NO",
			Type:  "TEXT",
		})
	}
}

func TestDescribeFileCache(t *testing.T) {
	t.Parallel()

	directory := t.TempDir()
	introspections := 0

	schemaCache, err := cache.NewDriverFile(directory)
	assert.NilError(t, err)

	service := newSQLiteService(t,
		database.WithSchemaCache(schemaCache),
		describeCounter(&introspections),
	)

	vehicles, err := service.Builder("vehicle")
	assert.NilError(t, err)

	_, err = vehicles.Describe(t.Context(), 0, false)
	assert.NilError(t, err)

	_, err = vehicles.Fields(t.Context(), 0, false)
	assert.NilError(t, err)
	assert.Equal(t, introspections, 1)

	{ // The snapshot file is named after the table and uses the default lifetime
		raw, err := schemaCache.Get(t.Context(), "vehicle")
		assert.NilError(t, err)

		snapshot := map[string]any{}
		assert.NilError(t, json.Unmarshal([]byte(raw), &snapshot))
		assert.Equal(t, snapshot["overtime"], database.DefaultSchemaTTL.Seconds())

		matches, err := filepath.Glob(filepath.Join(directory, "vehicle"))
		assert.NilError(t, err)
		assert.Equal(t, len(matches), 1)
	}
}

func TestDescribeNeedsConfiguration(t *testing.T) {
	t.Parallel()

	{ // No schema cache
		service := newSQLiteService(t)

		_, err := service.Describe(t.Context(), "vehicle", time.Hour, false)
		assert.ErrorIs(t, err, database.ErrConfiguration)
	}

	{ // No table
		schemaCache, err := cache.NewDriverMemory()
		assert.NilError(t, err)

		service := newSQLiteService(t, database.WithSchemaCache(schemaCache))

		_, err = service.Describe(t.Context(), "", time.Hour, false)
		assert.ErrorIs(t, err, database.ErrConfiguration)
	}
}
