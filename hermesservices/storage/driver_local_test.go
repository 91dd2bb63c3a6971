package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lunagic/hermes/hermesservices/storage"
	"gotest.tools/v3/assert"
)

func Test_Driver_Local(t *testing.T) {
	t.Parallel()

	driver, err := storage.NewDriverLocal(filepath.Join(t.TempDir(), "published"))
	assert.NilError(t, err)
	assert.NilError(t, driver.IsReady(t.Context()))

	testSuite(t, driver)
}

func Test_PublishFile(t *testing.T) {
	t.Parallel()

	destination := t.TempDir()
	driver, err := storage.NewDriverLocal(destination)
	assert.NilError(t, err)

	source := filepath.Join(t.TempDir(), "luoji_0_200.xlsx")
	assert.NilError(t, os.WriteFile(source, []byte("workbook"), 0o644))

	location, err := storage.PublishFile(t.Context(), driver, source)
	assert.NilError(t, err)
	assert.Equal(t, location, filepath.Join(destination, "luoji_0_200.xlsx"))

	content, err := os.ReadFile(location)
	assert.NilError(t, err)
	assert.Equal(t, string(content), "workbook")

	{ // Missing source files are reported
		_, err := storage.PublishFile(t.Context(), driver, filepath.Join(t.TempDir(), "missing.xlsx"))
		assert.Assert(t, os.IsNotExist(err))
	}
}

func Test_ContentType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, storage.ContentType("luoji_0_200.XLSX"), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	assert.Equal(t, storage.ContentType("cookies.json"), "application/json")
	assert.Equal(t, storage.ContentType("luoji"), "application/octet-stream")
}
