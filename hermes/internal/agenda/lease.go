package agenda

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lunagic/hermes/hermesservices/cache"
)

type leaseRecord struct {
	Holder    string
	CheckedIn time.Time
}

// Lease elects one holder among processes sharing a cache driver. The
// holder keeps the lease by checking in within ttl.
type Lease struct {
	holder  string
	name    string
	ttl     time.Duration
	settle  time.Duration
	records *cache.Repository[string, leaseRecord]
	now     func() time.Time
}

// NewLease names the lease and how long a silent holder keeps it. A new
// claimant waits settle before trusting its claim so the last of several
// simultaneous claims wins.
func NewLease(driver cache.Driver, name string, ttl time.Duration, settle time.Duration) *Lease {
	return &Lease{
		holder:  uuid.NewString(),
		name:    name,
		ttl:     ttl,
		settle:  settle,
		records: cache.NewRepository[string, leaseRecord](driver, "hermes-lease"),
		now:     time.Now,
	}
}

func (lease *Lease) Holder() string {
	return lease.holder
}

// Hold reports whether this process holds the lease, claiming it when the
// current holder has gone quiet.
func (lease *Lease) Hold(ctx context.Context) (bool, error) {
	record, err := lease.records.Get(ctx, lease.name)
	if err != nil && !errors.Is(err, cache.ErrNotFound) {
		return false, err
	}

	if record.Holder != lease.holder {
		if record.Holder != "" && lease.now().Sub(record.CheckedIn) <= lease.ttl {
			return false, nil
		}

		if err := lease.checkIn(ctx); err != nil {
			return false, err
		}

		timer := time.NewTimer(lease.settle)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}

		record, err = lease.records.Get(ctx, lease.name)
		if err != nil {
			return false, err
		}

		if record.Holder != lease.holder {
			return false, nil
		}
	}

	return true, lease.checkIn(ctx)
}

// Release gives the lease up if this process holds it.
func (lease *Lease) Release(ctx context.Context) error {
	record, err := lease.records.Get(ctx, lease.name)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil
		}
		return err
	}

	if record.Holder != lease.holder {
		return nil
	}

	return lease.records.Delete(ctx, lease.name)
}

func (lease *Lease) checkIn(ctx context.Context) error {
	return lease.records.Set(ctx, lease.name, leaseRecord{
		Holder:    lease.holder,
		CheckedIn: lease.now(),
	}, lease.ttl*2)
}
