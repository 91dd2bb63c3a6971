package queue_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lunagic/hermes/hermesservices/queue"
	"gotest.tools/v3/assert"
)

type newVehicle struct {
	SiteID string `json:"site_id"`
	Plate  string `json:"plate"`
}

func testSuite(t *testing.T, driver queue.Driver) {
	vehicles, err := queue.NewQueue[newVehicle](t.Context(), driver, uuid.NewString())
	assert.NilError(t, err)

	expected := newVehicle{
		SiteID: uuid.NewString(),
		Plate:  "A12345",
	}

	assert.NilError(t, vehicles.Publish(t.Context(), expected))

	stop := errors.New(uuid.NewString())

	received := newVehicle{}
	consumeErr := vehicles.Consume(
		t.Context(),
		func(ctx context.Context, payload newVehicle) error {
			received = payload
			return stop
		},
	)
	assert.ErrorIs(t, consumeErr, stop)
	assert.DeepEqual(t, received, expected)
}
