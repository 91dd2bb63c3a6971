package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrInvalidKey = errors.New("invalid key")

// NewDriverFile keeps one file per key under directory. The file holds the
// value verbatim and its modification time is the expiry.
func NewDriverFile(directory string) (Driver, error) {
	if directory == "" {
		return nil, errors.New("file cache needs a directory")
	}

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, err
	}

	return &driverFile{
		directory: directory,
		now:       time.Now,
	}, nil
}

type driverFile struct {
	directory string
	now       func() time.Time
}

func (driver *driverFile) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return filepath.Join(driver.directory, key), nil
}

func (driver *driverFile) Delete(ctx context.Context, key string) error {
	path, err := driver.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

func (driver *driverFile) Get(ctx context.Context, key string) (string, error) {
	path, err := driver.path(key)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}

		return "", err
	}

	// Expired files stay on disk until the next Set replaces them
	if !driver.now().Before(info.ModTime()) {
		return "", ErrNotFound
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return string(content), nil
}

func (driver *driverFile) Set(ctx context.Context, key string, value string, duration time.Duration) error {
	path, err := driver.path(key)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		return err
	}

	now := driver.now()

	return os.Chtimes(path, now, now.Add(duration))
}
