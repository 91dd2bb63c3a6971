package database

import (
	"fmt"
	"strconv"
	"strings"
)

type binder struct {
	counter    int
	parameters map[string]any
}

func newBinder() *binder {
	return &binder{
		parameters: map[string]any{},
	}
}

// bindPrefix keeps bound names apart from text that Raw expressions carry.
const bindPrefix = ":__p"

func (b *binder) bind(value any) string {
	b.counter++
	key := fmt.Sprintf("%s%d", bindPrefix, b.counter)
	b.parameters[key] = value

	return key
}

func (b *binder) statement(query string, kind statementKind) Statement {
	return Statement{
		Query:      query,
		Parameters: b.parameters,
		kind:       kind,
	}
}

func columnsFragment(columns []string) string {
	if len(columns) == 0 {
		return "*"
	}

	return strings.Join(columns, ",")
}

// whereFragment renders the tree as "( a > :__p1 or ( b = :__p2 ) )". Nested
// trees are prefixed with their connector unless they open the fragment;
// adjacent comparisons without a connector are joined with "and".
func whereFragment(where Where, b *binder) (string, error) {
	if len(where) == 0 {
		return "true", nil
	}

	body := ""
	for _, condition := range where {
		switch value := condition.Value.(type) {
		case Where:
			nested, err := whereFragment(value, b)
			if err != nil {
				return "", err
			}
			body += connector(body, condition.Key) + " " + nested
			continue
		case []Condition:
			nested, err := whereFragment(Where(value), b)
			if err != nil {
				return "", err
			}
			body += connector(body, condition.Key) + " " + nested
			continue
		case rawExpression:
			body += connector(body, "and") + " " + condition.Key
			continue
		case nil:
			body += connector(body, "and") + " " + condition.Key + " IS NULL"
			continue
		}

		comparison, err := comparisonOf(condition)
		if err != nil {
			return "", err
		}

		body += connector(body, "and") + " " + condition.Key + " " + comparison.Operator + " " + b.bind(comparison.Value)
	}

	return "(" + body + " )", nil
}

func connector(body string, keyword string) string {
	if body == "" {
		return ""
	}

	return " " + keyword
}

func comparisonOf(condition Condition) (Comparison, error) {
	switch value := condition.Value.(type) {
	case Comparison:
		if value.Operator == "" {
			return Comparison{}, fmt.Errorf("%w: missing operator for %s", ErrArgument, condition.Key)
		}
		return value, nil
	case string:
		comparison := ParseComparison(value)
		if comparison.Operator == "" {
			return Comparison{}, fmt.Errorf("%w: empty comparison for %s", ErrArgument, condition.Key)
		}
		return comparison, nil
	}

	return Equal(condition.Value), nil
}

func orderFragment(order Order) string {
	parts := []string{}
	for i, term := range order {
		column := term.Column
		if column == "" {
			column = strconv.Itoa(i + 1)
		}

		if term.Direction == "" {
			parts = append(parts, column)
			continue
		}

		parts = append(parts, column+" "+term.Direction)
	}

	return strings.Join(parts, ",")
}

func assignments(columns []string, placeholders []string) []string {
	parts := []string{}
	for i, column := range columns {
		parts = append(parts, column+"="+placeholders[i])
	}

	return parts
}
