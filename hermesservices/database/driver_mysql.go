package database

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/go-sql-driver/mysql"
)

func NewDriverMySQL(config DriverMySQLConfig) Driver {
	return &driverMySQL{
		config: config,
	}
}

type DriverMySQLConfig struct {
	Host    string
	Port    int
	User    string
	Pass    string
	Name    string
	Charset string
}

type driverMySQL struct {
	config DriverMySQLConfig
}

func (driver *driverMySQL) Open() (*sql.DB, error) {
	_ = mysql.SetLogger(log.New(io.Discard, "", log.LstdFlags))

	charset := driver.config.Charset
	if charset == "" {
		charset = "utf8mb4"
	}

	return sql.Open("mysql", fmt.Sprintf(
		"%s:%s@(%s:%d)/%s?parseTime=true&charset=%s",
		driver.config.User,
		driver.config.Pass,
		driver.config.Host,
		driver.config.Port,
		driver.config.Name,
		charset,
	))
}

func (driver *driverMySQL) generateDescribe(table string) Statement {
	return Statement{
		Query: "DESC " + table,
		kind:  statementKindQuery,
	}
}

func (driver *driverMySQL) generateInsert(table string, columns []string, placeholders []string) string {
	return fmt.Sprintf(
		"INSERT IGNORE INTO %s(%s) values(%s)",
		table,
		strings.Join(columns, ","),
		strings.Join(placeholders, ","),
	)
}

func (driver *driverMySQL) generateLimit(limit Limit) string {
	return limit.String()
}

func (driver *driverMySQL) generateUpsert(table string, columns []string, placeholders []string, conflictColumns []string) (string, error) {
	return fmt.Sprintf(
		"INSERT INTO %s(%s) values(%s) ON DUPLICATE KEY UPDATE %s",
		table,
		strings.Join(columns, ","),
		strings.Join(placeholders, ","),
		strings.Join(assignments(columns, placeholders), ","),
	), nil
}

func (driver *driverMySQL) describeRow(row Row) ColumnInfo {
	return columnInfoFromRow(row)
}

func (driver *driverMySQL) supportsMutationOrderLimit() bool {
	return true
}

func (driver *driverMySQL) usesNumberedParameters() bool {
	return false
}
