package storage_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lunagic/hermes/hermesservices/storage"
	"gotest.tools/v3/assert"
)

func readAll(t *testing.T, driver storage.Driver, name string) string {
	t.Helper()

	reader, err := driver.Get(t.Context(), name)
	assert.NilError(t, err)
	defer func() {
		_ = reader.Close()
	}()

	content, err := io.ReadAll(reader)
	assert.NilError(t, err)

	return string(content)
}

// testSuite publishes workbook sized payloads the way a scrape does:
// one object per workbook, replaced when the batch is scraped again.
func testSuite(t *testing.T, driver storage.Driver) {
	t.Helper()

	assert.NilError(t, driver.IsReady(t.Context()))

	name := "luoji_" + uuid.NewString()[:8] + ".xlsx"
	workbook := bytes.Repeat([]byte("PK\x03\x04"), 4096)

	{ // Nothing there yet
		found, err := driver.Exists(t.Context(), name)
		assert.NilError(t, err)
		assert.Assert(t, !found)
	}

	{ // Publish
		assert.NilError(t, driver.Put(t.Context(), name, bytes.NewReader(workbook)))
		t.Cleanup(func() {
			_ = driver.Delete(context.Background(), name)
		})

		found, err := driver.Exists(t.Context(), name)
		assert.NilError(t, err)
		assert.Assert(t, found)
		assert.Equal(t, readAll(t, driver, name), string(workbook))
	}

	{ // Publishing again replaces the object
		assert.NilError(t, driver.Put(t.Context(), name, strings.NewReader("second run")))
		assert.Equal(t, readAll(t, driver, name), "second run")
	}

	{ // Nested names
		nested := "2024/" + name
		assert.NilError(t, driver.Put(t.Context(), nested, strings.NewReader("nested")))
		assert.Equal(t, readAll(t, driver, nested), "nested")
		assert.NilError(t, driver.Delete(t.Context(), nested))
	}

	{ // Location names the object
		assert.Assert(t, strings.HasSuffix(driver.Location(name), name))
	}

	{ // Delete, twice
		assert.NilError(t, driver.Delete(t.Context(), name))
		assert.NilError(t, driver.Delete(t.Context(), name))

		found, err := driver.Exists(t.Context(), name)
		assert.NilError(t, err)
		assert.Assert(t, !found)
	}
}
