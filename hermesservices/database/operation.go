package database

import (
	"strings"
)

// Condition is one entry of a Where tree. When Value is a nested Where the
// Key is its connector (and/or); Raw conditions render Key verbatim; a nil
// Value compares Key against NULL; otherwise Key is a column compared
// against Value.
type Condition struct {
	Key   string
	Value any
}

// Where is an ordered boolean condition tree.
type Where []Condition

// Everything is the explicit "match all rows" condition.
var Everything = Where{Raw("true")}

func Match(column string, value any) Condition {
	return Condition{
		Key:   column,
		Value: value,
	}
}

func And(conditions ...Condition) Condition {
	return Condition{
		Key:   "and",
		Value: Where(conditions),
	}
}

func Or(conditions ...Condition) Condition {
	return Condition{
		Key:   "or",
		Value: Where(conditions),
	}
}

type rawExpression struct{}

// Raw renders expression verbatim. It must not contain bound parameter
// names (":__p" followed by digits).
func Raw(expression string) Condition {
	return Condition{
		Key:   expression,
		Value: rawExpression{},
	}
}

// Comparison is an operator and the value it compares against.
type Comparison struct {
	Operator string
	Value    any
}

func Equal(value any) Comparison {
	return Comparison{Operator: "=", Value: value}
}

func NotEqual(value any) Comparison {
	return Comparison{Operator: "!=", Value: value}
}

func GreaterThan(value any) Comparison {
	return Comparison{Operator: ">", Value: value}
}

func GreaterThanOrEqual(value any) Comparison {
	return Comparison{Operator: ">=", Value: value}
}

func LessThan(value any) Comparison {
	return Comparison{Operator: "<", Value: value}
}

func LessThanOrEqual(value any) Comparison {
	return Comparison{Operator: "<=", Value: value}
}

func Like(value any) Comparison {
	return Comparison{Operator: "like", Value: value}
}

// ParseComparison splits a leaf such as ">5", "!=abc" or "like a%" into its
// operator and trimmed value. The operator is two characters wide when the
// second character is '=', four when the leaf starts with "like", and one
// character otherwise.
func ParseComparison(leaf string) Comparison {
	runes := []rune(leaf)

	width := 1
	if len(runes) > 1 && runes[1] == '=' {
		width = 2
	}
	if strings.HasPrefix(leaf, "like") {
		width = 4
	}
	if width > len(runes) {
		width = len(runes)
	}

	return Comparison{
		Operator: string(runes[:width]),
		Value:    strings.TrimSpace(string(runes[width:])),
	}
}
