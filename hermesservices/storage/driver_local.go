package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
)

func NewDriverLocal(directory string) (*DriverLocal, error) {
	if directory == "" {
		return nil, errors.New("local storage needs a directory")
	}

	return &DriverLocal{
		Directory: directory,
	}, nil
}

type DriverLocal struct {
	Directory string
}

func (driver *DriverLocal) absolutePath(filePath string) string {
	return filepath.Join(driver.Directory, filepath.FromSlash(filePath))
}

func (driver *DriverLocal) Get(ctx context.Context, filePath string) (io.ReadCloser, error) {
	return os.Open(driver.absolutePath(filePath))
}

func (driver *DriverLocal) Put(ctx context.Context, filePath string, payload io.Reader) error {
	target := driver.absolutePath(filePath)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	file, err := os.Create(target)
	if err != nil {
		return err
	}

	if _, err := io.Copy(file, payload); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

func (driver *DriverLocal) Delete(ctx context.Context, filePath string) error {
	if err := os.Remove(driver.absolutePath(filePath)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}

	return nil
}

func (driver *DriverLocal) Exists(ctx context.Context, filePath string) (bool, error) {
	if _, err := os.Stat(driver.absolutePath(filePath)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (driver *DriverLocal) IsReady(ctx context.Context) error {
	return os.MkdirAll(driver.Directory, 0o755)
}

func (driver *DriverLocal) Location(filePath string) string {
	return driver.absolutePath(filePath)
}
