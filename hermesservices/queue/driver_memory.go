package queue

import (
	"context"
	"fmt"
	"sync"
)

type memoryQueue struct {
	items [][]byte
	ready chan struct{}
}

// NewDriverMemory keeps unbounded in-process queues. Publish never blocks.
func NewDriverMemory() (Driver, error) {
	return &driverMemory{
		queues: map[string]*memoryQueue{},
	}, nil
}

type driverMemory struct {
	mutex  sync.Mutex
	queues map[string]*memoryQueue
}

func (driver *driverMemory) CreateQueue(ctx context.Context, queueName string) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	if _, found := driver.queues[queueName]; !found {
		driver.queues[queueName] = &memoryQueue{
			items: [][]byte{},
			ready: make(chan struct{}, 1),
		}
	}

	return nil
}

func (driver *driverMemory) Publish(ctx context.Context, queueName string, payload []byte) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	queue, found := driver.queues[queueName]
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownQueue, queueName)
	}

	queue.items = append(queue.items, payload)

	select {
	case queue.ready <- struct{}{}:
	default:
	}

	return nil
}

func (driver *driverMemory) pop(queueName string) ([]byte, chan struct{}, error) {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	queue, found := driver.queues[queueName]
	if !found {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownQueue, queueName)
	}

	if len(queue.items) == 0 {
		return nil, queue.ready, nil
	}

	item := queue.items[0]
	queue.items = queue.items[1:]

	return item, queue.ready, nil
}

func (driver *driverMemory) Consume(
	ctx context.Context,
	queueName string,
	handler func(ctx context.Context, payload []byte) error,
) error {
	for {
		item, ready, err := driver.pop(queueName)
		if err != nil {
			return err
		}

		if item != nil {
			if err := handler(ctx, item); err != nil {
				return err
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ready:
		}
	}
}

func (driver *driverMemory) Close() error {
	return nil
}
