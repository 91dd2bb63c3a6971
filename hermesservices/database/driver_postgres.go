package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

func NewDriverPostgres(config DriverPostgresConfig) Driver {
	return &driverPostgres{
		config: config,
	}
}

type DriverPostgresConfig struct {
	Host string
	Port int
	User string
	Pass string
	Name string
}

type driverPostgres struct {
	config DriverPostgresConfig
}

func (driver *driverPostgres) Open() (*sql.DB, error) {
	return sql.Open(
		"postgres",
		fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			driver.config.Host,
			driver.config.Port,
			driver.config.User,
			driver.config.Pass,
			driver.config.Name,
		),
	)
}

func (driver *driverPostgres) generateDescribe(table string) Statement {
	return Statement{
		Query: `
			SELECT
				c.column_name AS "Field",
				c.data_type AS "Type",
				c.is_nullable AS "Null",
				CASE WHEN pk.column_name IS NULL THEN '' ELSE 'PRI' END AS "Key",
				c.column_default AS "Default",
				'' AS "Extra"
			FROM information_schema.columns c
			LEFT JOIN (
				SELECT kcu.column_name
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON tc.constraint_name = kcu.constraint_name
					AND tc.table_schema = kcu.table_schema
				WHERE
					tc.table_name = :table
					AND tc.constraint_type = 'PRIMARY KEY'
			) pk ON pk.column_name = c.column_name
			WHERE
				c.table_schema = current_schema()
				AND c.table_name = :table
			ORDER BY c.ordinal_position
		`,
		Parameters: map[string]any{
			":table": table,
		},
		kind: statementKindQuery,
	}
}

func (driver *driverPostgres) generateInsert(table string, columns []string, placeholders []string) string {
	return fmt.Sprintf(
		"INSERT INTO %s(%s) values(%s) ON CONFLICT DO NOTHING",
		table,
		strings.Join(columns, ","),
		strings.Join(placeholders, ","),
	)
}

func (driver *driverPostgres) generateLimit(limit Limit) string {
	if limit.paged {
		return fmt.Sprintf("%d OFFSET %d", limit.Count, limit.Offset)
	}

	return limit.String()
}

func (driver *driverPostgres) generateUpsert(table string, columns []string, placeholders []string, conflictColumns []string) (string, error) {
	if len(conflictColumns) == 0 {
		return "", fmt.Errorf("%w: postgres upsert needs conflict columns", ErrArgument)
	}

	return fmt.Sprintf(
		"INSERT INTO %s(%s) values(%s) ON CONFLICT (%s) DO UPDATE SET %s",
		table,
		strings.Join(columns, ","),
		strings.Join(placeholders, ","),
		strings.Join(conflictColumns, ","),
		strings.Join(assignments(columns, placeholders), ","),
	), nil
}

func (driver *driverPostgres) describeRow(row Row) ColumnInfo {
	return columnInfoFromRow(row)
}

func (driver *driverPostgres) supportsMutationOrderLimit() bool {
	return false
}

func (driver *driverPostgres) usesNumberedParameters() bool {
	return true
}
