package utils

import (
	"reflect"
	"strings"
)

type DBTag struct {
	Column        string
	ReadOnly      bool
	PrimaryKey    bool
	AutoIncrement bool
}

// ParseTag reads `db:"column,option,option"` struct tags. A tag of "-" or
// no tag at all yields an empty Column.
func ParseTag(tagString reflect.StructTag) DBTag {
	raw := tagString.Get("db")
	if raw == "" || raw == "-" {
		return DBTag{}
	}

	parts := strings.Split(raw, ",")

	tag := DBTag{
		Column: strings.TrimSpace(parts[0]),
	}

	for _, part := range parts[1:] {
		switch strings.TrimSpace(part) {
		case "readOnly":
			tag.ReadOnly = true
		case "primaryKey":
			tag.PrimaryKey = true
		case "autoIncrement":
			tag.AutoIncrement = true
		}
	}

	return tag
}
