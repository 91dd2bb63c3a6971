package database

import (
	"database/sql"
	"errors"
)

var (
	// ErrArgument is returned for missing or malformed statement inputs.
	ErrArgument = errors.New("sql argument error")
	// ErrConfiguration is returned when the service or builder lacks a
	// table binding or a schema cache.
	ErrConfiguration = errors.New("configuration error")
	ErrNoRows        = errors.New("no rows found")
	ErrBlankQuery    = errors.New("blank query")
)

// Driver renders the dialect specific pieces of a statement and opens the
// underlying connection. Everything else is shared between dialects.
type Driver interface {
	Open() (*sql.DB, error)
	generateDescribe(table string) Statement
	generateInsert(table string, columns []string, placeholders []string) string
	generateLimit(limit Limit) string
	generateUpsert(table string, columns []string, placeholders []string, conflictColumns []string) (string, error)
	describeRow(row Row) ColumnInfo
	supportsMutationOrderLimit() bool
	usesNumberedParameters() bool
}

func columnInfoFromRow(row Row) ColumnInfo {
	return ColumnInfo{
		Field:   asString(row["Field"]),
		Type:    asString(row["Type"]),
		Null:    asString(row["Null"]),
		Key:     asString(row["Key"]),
		Default: asStringPointer(row["Default"]),
		Extra:   asString(row["Extra"]),
	}
}
