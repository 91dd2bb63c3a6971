package cache_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lunagic/hermes/hermesservices/cache"
	"gotest.tools/v3/assert"
)

// testCase runs the behaviour every driver shares. Keys look like the table
// names the schema cache stores and values like its JSON snapshots.
func testCase(t *testing.T, driver cache.Driver) {
	t.Helper()

	table := "vehicle_" + uuid.NewString()[:8]
	snapshot := `{"site_id":{"Field":"site_id","Type":"varchar(64)","Null":"NO","Key":"PRI","Default":null},"timestamp":1700000000.5,"overtime":43200}`

	{ // Missing keys
		_, err := driver.Get(t.Context(), table)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}

	{ // Stored values come back unchanged
		assert.NilError(t, driver.Set(t.Context(), table, snapshot, 30*time.Second))

		value, err := driver.Get(t.Context(), table)
		assert.NilError(t, err)
		assert.Equal(t, value, snapshot)
	}

	{ // Setting again replaces the value
		assert.NilError(t, driver.Set(t.Context(), table, "{}", 30*time.Second))

		value, err := driver.Get(t.Context(), table)
		assert.NilError(t, err)
		assert.Equal(t, value, "{}")
	}

	{ // Delete, twice
		assert.NilError(t, driver.Delete(t.Context(), table))
		assert.NilError(t, driver.Delete(t.Context(), table))

		_, err := driver.Get(t.Context(), table)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}

	{ // Values expire
		assert.NilError(t, driver.Set(t.Context(), table, snapshot, time.Second))

		value, err := driver.Get(t.Context(), table)
		assert.NilError(t, err)
		assert.Equal(t, value, snapshot)

		time.Sleep(2 * time.Second)

		_, err = driver.Get(t.Context(), table)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}
}
