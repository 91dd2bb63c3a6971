package utils_test

import (
	"reflect"
	"testing"

	"github.com/lunagic/hermes/hermesservices/database/internal/utils"
	"gotest.tools/v3/assert"
)

func TestParseTag(t *testing.T) {
	t.Parallel()

	type row struct {
		ID      int64  `db:"id,primaryKey,autoIncrement"`
		Created string `db:"created_at, readOnly"`
		Skipped string `db:"-"`
		Plain   string
	}

	rowType := reflect.TypeFor[row]()

	assert.DeepEqual(t, utils.ParseTag(rowType.Field(0).Tag), utils.DBTag{Column: "id", PrimaryKey: true, AutoIncrement: true})
	assert.DeepEqual(t, utils.ParseTag(rowType.Field(1).Tag), utils.DBTag{Column: "created_at", ReadOnly: true})
	assert.DeepEqual(t, utils.ParseTag(rowType.Field(2).Tag), utils.DBTag{})
	assert.DeepEqual(t, utils.ParseTag(rowType.Field(3).Tag), utils.DBTag{})
}
