package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewDriverMemory keeps values in process. Expired entries are dropped when
// they are next read or when Set finds the map has grown.
func NewDriverMemory() (Driver, error) {
	return &driverMemory{
		entries: map[string]memoryEntry{},
		now:     time.Now,
	}, nil
}

type driverMemory struct {
	mutex   sync.Mutex
	entries map[string]memoryEntry
	sets    int
	now     func() time.Time
}

func (driver *driverMemory) Delete(ctx context.Context, key string) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	delete(driver.entries, key)

	return nil
}

func (driver *driverMemory) Get(ctx context.Context, key string) (string, error) {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	entry, found := driver.entries[key]
	if !found {
		return "", ErrNotFound
	}

	if !driver.now().Before(entry.expiresAt) {
		delete(driver.entries, key)
		return "", ErrNotFound
	}

	return entry.value, nil
}

func (driver *driverMemory) Set(ctx context.Context, key string, value string, duration time.Duration) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	now := driver.now()
	driver.entries[key] = memoryEntry{
		value:     value,
		expiresAt: now.Add(duration),
	}

	driver.sets++
	if driver.sets%128 == 0 {
		for key, entry := range driver.entries {
			if !now.Before(entry.expiresAt) {
				delete(driver.entries, key)
			}
		}
	}

	return nil
}
