package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lunagic/hermes/hermesservices/cache"
)

// DefaultSchemaTTL is how long a table snapshot is trusted.
const DefaultSchemaTTL = 12 * time.Hour

// ColumnInfo mirrors a MySQL DESC row.
type ColumnInfo struct {
	Field   string  `json:"Field"`
	Type    string  `json:"Type"`
	Null    string  `json:"Null"`
	Key     string  `json:"Key"`
	Default *string `json:"Default"`
	Extra   string  `json:"Extra"`
}

// Schema maps column names to their description.
type Schema map[string]ColumnInfo

// FieldInfo is the reduced column description returned by Fields.
type FieldInfo struct {
	Field   string  `json:"field"`
	Default *string `json:"default"`
	Key     string  `json:"key"`
	Null    string  `json:"null"`
	Type    string  `json:"type"`
}

// schemaSnapshot is stored as one flat JSON object: a key per column plus
// "timestamp" and "overtime". A column named timestamp or overtime is
// shadowed by the bookkeeping keys.
type schemaSnapshot struct {
	Columns   Schema
	Timestamp float64
	Overtime  int64
}

func (snapshot schemaSnapshot) MarshalJSON() ([]byte, error) {
	flat := map[string]any{}
	for name, column := range snapshot.Columns {
		flat[name] = column
	}
	flat["timestamp"] = snapshot.Timestamp
	flat["overtime"] = snapshot.Overtime

	return json.Marshal(flat)
}

func (snapshot *schemaSnapshot) UnmarshalJSON(data []byte) error {
	flat := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	timestamp, foundTimestamp := flat["timestamp"]
	overtime, foundOvertime := flat["overtime"]
	if !foundTimestamp || !foundOvertime {
		return errors.New("schema snapshot is missing its timestamp")
	}

	if err := json.Unmarshal(timestamp, &snapshot.Timestamp); err != nil {
		return err
	}

	if err := json.Unmarshal(overtime, &snapshot.Overtime); err != nil {
		return err
	}

	delete(flat, "timestamp")
	delete(flat, "overtime")

	snapshot.Columns = Schema{}
	for name, raw := range flat {
		column := ColumnInfo{}
		if err := json.Unmarshal(raw, &column); err != nil {
			return err
		}
		snapshot.Columns[name] = column
	}

	return nil
}

func (snapshot schemaSnapshot) fresh(now time.Time) bool {
	seconds := float64(now.UnixNano()) / float64(time.Second)

	return seconds-snapshot.Timestamp < float64(snapshot.Overtime)
}

// Describe returns the column layout of the table, read from the schema
// cache while the snapshot is younger than ttl. A zero ttl uses
// DefaultSchemaTTL. force skips the cached snapshot.
func (service *Service) Describe(ctx context.Context, table string, ttl time.Duration, force bool) (Schema, error) {
	if table == "" {
		return nil, fmt.Errorf("%w: no table bound", ErrConfiguration)
	}

	if service.schemaCache == nil {
		return nil, fmt.Errorf("%w: no schema cache", ErrConfiguration)
	}

	if ttl <= 0 {
		ttl = DefaultSchemaTTL
	}

	snapshots := cache.NewRepository[string, schemaSnapshot](service.schemaCache, "")

	if !force {
		snapshot, err := snapshots.Get(ctx, table)
		if err == nil && snapshot.fresh(service.now()) {
			return snapshot.Columns, nil
		}

		// Unreadable snapshots are rebuilt
		if err != nil && !errors.Is(err, cache.ErrNotFound) {
			service.logger.Warn("Schema Snapshot Unreadable",
				"table", table,
				"err", err,
			)
		}
	}

	result, err := service.Execute(ctx, service.driver.generateDescribe(table))
	if err != nil {
		return nil, err
	}

	if len(result.Rows) == 0 {
		return nil, fmt.Errorf("%w: table %s not found", ErrConfiguration, table)
	}

	columns := Schema{}
	for _, row := range result.Rows {
		column := service.driver.describeRow(row)
		columns[column.Field] = column
	}

	now := service.now()
	snapshot := schemaSnapshot{
		Columns:   columns,
		Timestamp: float64(now.UnixNano()) / float64(time.Second),
		Overtime:  int64(math.Ceil(ttl.Seconds())),
	}

	if err := snapshots.Set(ctx, table, snapshot, ttl); err != nil {
		return nil, err
	}

	return columns, nil
}

// Fields is Describe reduced to field, default, key, null and type.
func (service *Service) Fields(ctx context.Context, table string, ttl time.Duration, force bool) (map[string]FieldInfo, error) {
	columns, err := service.Describe(ctx, table, ttl, force)
	if err != nil {
		return nil, err
	}

	fields := map[string]FieldInfo{}
	for name, column := range columns {
		fields[name] = FieldInfo{
			Field:   column.Field,
			Default: column.Default,
			Key:     column.Key,
			Null:    column.Null,
			Type:    column.Type,
		}
	}

	return fields, nil
}
