package storage

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Driver is where finished workbooks are published.
type Driver interface {
	Put(ctx context.Context, filePath string, payload io.Reader) error
	Get(ctx context.Context, filePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, filePath string) error
	Exists(ctx context.Context, filePath string) (bool, error)
	IsReady(ctx context.Context) error
	// Location describes where filePath lives, for logging.
	Location(filePath string) string
}

// ContentType is the media type objects are published with.
func ContentType(filePath string) string {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".json":
		return "application/json"
	}

	return "application/octet-stream"
}

// PublishFile copies the local file to the driver under its base name and
// returns the resulting location.
func PublishFile(ctx context.Context, driver Driver, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	name := filepath.Base(localPath)
	if err := driver.Put(ctx, name, file); err != nil {
		return "", err
	}

	return driver.Location(name), nil
}
