package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

func NewDriverSQLite(path string) Driver {
	return &driverSQLite{
		Path: path,
	}
}

type driverSQLite struct {
	Path string
}

func (driver *driverSQLite) Open() (*sql.DB, error) {
	return sql.Open(
		"sqlite3",
		fmt.Sprintf("file:%s?cache=shared&_foreign_keys=on", driver.Path),
	)
}

func (driver *driverSQLite) generateDescribe(table string) Statement {
	return Statement{
		Query: fmt.Sprintf("PRAGMA table_info(%s)", table),
		kind:  statementKindQuery,
	}
}

func (driver *driverSQLite) generateInsert(table string, columns []string, placeholders []string) string {
	return fmt.Sprintf(
		"INSERT OR IGNORE INTO %s(%s) values(%s)",
		table,
		strings.Join(columns, ","),
		strings.Join(placeholders, ","),
	)
}

func (driver *driverSQLite) generateLimit(limit Limit) string {
	return limit.String()
}

func (driver *driverSQLite) generateUpsert(table string, columns []string, placeholders []string, conflictColumns []string) (string, error) {
	target := ""
	if len(conflictColumns) > 0 {
		target = fmt.Sprintf(" (%s)", strings.Join(conflictColumns, ","))
	}

	return fmt.Sprintf(
		"INSERT INTO %s(%s) values(%s) ON CONFLICT%s DO UPDATE SET %s",
		table,
		strings.Join(columns, ","),
		strings.Join(placeholders, ","),
		target,
		strings.Join(assignments(columns, placeholders), ","),
	), nil
}

// describeRow maps a PRAGMA table_info row (cid, name, type, notnull,
// dflt_value, pk) onto the MySQL style column description.
func (driver *driverSQLite) describeRow(row Row) ColumnInfo {
	null := "YES"
	if asInt64(row["notnull"]) != 0 {
		null = "NO"
	}

	key := ""
	if asInt64(row["pk"]) > 0 {
		key = "PRI"
	}

	return ColumnInfo{
		Field:   asString(row["name"]),
		Type:    asString(row["type"]),
		Null:    null,
		Key:     key,
		Default: asStringPointer(row["dflt_value"]),
	}
}

func (driver *driverSQLite) supportsMutationOrderLimit() bool {
	return false
}

func (driver *driverSQLite) usesNumberedParameters() bool {
	return false
}
