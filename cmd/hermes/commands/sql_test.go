package commands

import (
	"testing"

	"github.com/lunagic/hermes/hermesservices/database"
	"gotest.tools/v3/assert"
)

func testBuilder(t *testing.T) *database.Builder {
	t.Helper()

	service, err := database.New(database.NewDriverMySQL(database.DriverMySQLConfig{}))
	assert.NilError(t, err)

	builder, err := service.Builder("vehicle")
	assert.NilError(t, err)

	return builder
}

func TestStatementFlagsCompose(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		verb     string
		flags    statementFlags
		expected string
	}{
		"select everything": {
			verb:     "select",
			expected: "SELECT * FROM vehicle WHERE true ",
		},
		"select with conditions": {
			verb: "select",
			flags: statementFlags{
				columns: []string{"site_id", "length"},
				where:   []string{"length:>= 4.2", "type_name:=厢式货车"},
				order:   []string{"-length", "site_id"},
				limit:   "20,10",
			},
			expected: "SELECT site_id,length FROM vehicle WHERE ( length >= '4.2' and type_name = '厢式货车' )  ORDER BY length desc,site_id asc LIMIT 20,10",
		},
		"select with alternatives": {
			verb: "select",
			flags: statementFlags{
				where: []string{"origin:=上海", "destination:=上海"},
				or:    true,
			},
			expected: "SELECT * FROM vehicle WHERE ( origin = '上海' or ( destination = '上海' ) ) ",
		},
		"select with raw text": {
			verb: "select",
			flags: statementFlags{
				where: []string{"phone IS NOT NULL"},
			},
			expected: "SELECT * FROM vehicle WHERE ( phone IS NOT NULL ) ",
		},
		"insert": {
			verb: "insert",
			flags: statementFlags{
				set: map[string]string{"site_id": "9", "phone": "138"},
			},
			expected: "INSERT IGNORE INTO vehicle(phone,site_id) values('138','9')",
		},
		"upsert": {
			verb: "upsert",
			flags: statementFlags{
				set: map[string]string{"site_id": "9"},
			},
			expected: "INSERT INTO vehicle(site_id) values('9') ON DUPLICATE KEY UPDATE site_id='9'",
		},
		"update": {
			verb: "update",
			flags: statementFlags{
				set:   map[string]string{"phone": "139"},
				where: []string{"site_id:=9"},
				limit: "1",
			},
			expected: "UPDATE vehicle SET phone='139' WHERE ( site_id = '9' )  LIMIT 1",
		},
		"delete everything": {
			verb: "delete",
			flags: statementFlags{
				all: true,
			},
			expected: "DELETE FROM vehicle WHERE ( true )",
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			statement, err := testCase.flags.compose(testBuilder(t), testCase.verb)
			assert.NilError(t, err)
			assert.Equal(t, statement.String(), testCase.expected)
		})
	}
}

func TestStatementFlagsComposeErrors(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		verb  string
		flags statementFlags
	}{
		"unknown verb":           {verb: "truncate"},
		"bad limit":              {verb: "select", flags: statementFlags{limit: "ten"}},
		"update without filter":  {verb: "update", flags: statementFlags{set: map[string]string{"a": "b"}}},
		"delete without filter":  {verb: "delete"},
		"all with conditions":    {verb: "delete", flags: statementFlags{all: true, where: []string{"a:=1"}}},
		"condition without leaf": {verb: "select", flags: statementFlags{where: []string{"a:"}}},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := testCase.flags.compose(testBuilder(t), testCase.verb)
			assert.ErrorIs(t, err, database.ErrArgument)
		})
	}
}
