package hermes

import (
	"context"
	"fmt"

	"github.com/lunagic/hermes/hermesservices/database"
)

const vehicleTableDefinition = `CREATE TABLE IF NOT EXISTS %s (
	site_id VARCHAR(64) NOT NULL PRIMARY KEY,
	driver_name VARCHAR(255),
	phone VARCHAR(64),
	address VARCHAR(255),
	type_name VARCHAR(64),
	plate_number VARCHAR(32),
	length DECIMAL(10,2),
	capacity DECIMAL(10,2),
	home_bases TEXT,
	origin VARCHAR(255),
	destination VARCHAR(255),
	current_address VARCHAR(255),
	coordinates VARCHAR(64),
	image_url TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// VehicleStore persists vehicles, deduplicated by site id.
type VehicleStore struct {
	service *database.Service
	table   *database.Builder
}

func NewVehicleStore(service *database.Service, table string) (*VehicleStore, error) {
	builder, err := service.Builder(table)
	if err != nil {
		return nil, err
	}

	return &VehicleStore{
		service: service,
		table:   builder,
	}, nil
}

// EnsureTable creates the vehicle table when it is missing.
func (store *VehicleStore) EnsureTable(ctx context.Context) error {
	_, err := store.service.Run(ctx, fmt.Sprintf(vehicleTableDefinition, store.table.Table()))
	return err
}

// Add inserts the vehicle unless its site id is already stored and reports
// whether it was new.
func (store *VehicleStore) Add(ctx context.Context, vehicle Vehicle) (bool, error) {
	values, err := database.ValuesOf(vehicle)
	if err != nil {
		return false, err
	}

	result, err := store.table.Insert(ctx, values)
	if err != nil {
		return false, err
	}

	return result.RowsAffected == 1, nil
}

func (store *VehicleStore) Get(ctx context.Context, siteID string) (Vehicle, error) {
	result, err := store.table.Select(ctx, database.SelectQuery{
		Where: database.Where{database.Match("site_id", database.Equal(siteID))},
		Limit: database.LimitTo(1),
	})
	if err != nil {
		return Vehicle{}, err
	}

	vehicles, err := database.ScanRows[Vehicle](result.Rows)
	if err != nil {
		return Vehicle{}, err
	}

	if len(vehicles) == 0 {
		return Vehicle{}, database.ErrNoRows
	}

	return vehicles[0], nil
}

func (store *VehicleStore) Count(ctx context.Context) (int64, error) {
	result, err := store.table.Select(ctx, database.SelectQuery{
		Columns: []string{"COUNT(*) AS total"},
	})
	if err != nil {
		return 0, err
	}

	counts, err := database.ScanRows[struct {
		Total int64 `db:"total"`
	}](result.Rows)
	if err != nil {
		return 0, err
	}

	if len(counts) == 0 {
		return 0, nil
	}

	return counts[0].Total, nil
}
