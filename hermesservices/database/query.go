package database

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lunagic/hermes/hermesservices/database/internal/utils"
)

type statementKind int

const (
	statementKindUnknown statementKind = iota
	statementKindQuery
	statementKindExecute
)

// Statement is composed SQL with :name placeholders and their values.
type Statement struct {
	Query      string
	Parameters map[string]any
	kind       statementKind
}

// String renders the statement with its values inlined as quoted literals.
// Use it for display (dry runs); execution always binds parameters.
func (statement Statement) String() string {
	return utils.Inline(statement.Query, statement.Parameters)
}

func (statement Statement) returnsRows() bool {
	switch statement.kind {
	case statementKindQuery:
		return true
	case statementKindExecute:
		return false
	}

	fields := strings.Fields(statement.Query)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToUpper(fields[0]) {
	case "SELECT", "SHOW", "DESC", "DESCRIBE", "EXPLAIN", "PRAGMA", "WITH", "VALUES":
		return true
	}

	return false
}

// Values maps columns to the values written to them. Columns are rendered in
// sorted order.
type Values map[string]any

func (values Values) columns() []string {
	columns := make([]string, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	return columns
}

type OrderTerm struct {
	Column    string
	Direction string
}

// Order is used for ORDER BY and GROUP BY. A term without a column refers to
// the selected column at its 1-based position.
type Order []OrderTerm

func Asc(column string) OrderTerm {
	return OrderTerm{Column: column, Direction: "asc"}
}

func Desc(column string) OrderTerm {
	return OrderTerm{Column: column, Direction: "desc"}
}

func Positional(directions ...string) Order {
	order := Order{}
	for _, direction := range directions {
		order = append(order, OrderTerm{Direction: direction})
	}

	return order
}

type Limit struct {
	Offset int
	Count  int
	paged  bool
}

func LimitTo(count int) Limit {
	return Limit{Count: count}
}

func LimitPage(offset int, count int) Limit {
	return Limit{Offset: offset, Count: count, paged: true}
}

func (limit Limit) IsZero() bool {
	return !limit.paged && limit.Count == 0
}

func (limit Limit) String() string {
	if limit.paged {
		return fmt.Sprintf("%d,%d", limit.Offset, limit.Count)
	}

	return strconv.Itoa(limit.Count)
}

func (limit Limit) validate() error {
	if limit.Offset < 0 || limit.Count < 0 {
		return errInvalidLimit
	}

	return nil
}

var errInvalidLimit = fmt.Errorf("%w: limit must be an integer or a two-element integer pair, both positive", ErrArgument)

// ParseLimit accepts an integer, a two element integer array or slice, a
// Limit, or the strings "n" and "offset,count".
func ParseLimit(value any) (Limit, error) {
	var limit Limit

	switch typed := value.(type) {
	case Limit:
		limit = typed
	case int:
		limit = LimitTo(typed)
	case int32:
		limit = LimitTo(int(typed))
	case int64:
		limit = LimitTo(int(typed))
	case [2]int:
		limit = LimitPage(typed[0], typed[1])
	case []int:
		if len(typed) != 2 {
			return Limit{}, errInvalidLimit
		}
		limit = LimitPage(typed[0], typed[1])
	case string:
		parts := strings.Split(typed, ",")
		numbers := []int{}
		for _, part := range parts {
			number, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return Limit{}, errInvalidLimit
			}
			numbers = append(numbers, number)
		}

		switch len(numbers) {
		case 1:
			limit = LimitTo(numbers[0])
		case 2:
			limit = LimitPage(numbers[0], numbers[1])
		default:
			return Limit{}, errInvalidLimit
		}
	default:
		return Limit{}, errInvalidLimit
	}

	if err := limit.validate(); err != nil {
		return Limit{}, err
	}

	return limit, nil
}

type SelectQuery struct {
	Columns []string
	Where   Where
	Group   Order
	Having  Where
	Order   Order
	Limit   Limit
}

type UpdateQuery struct {
	Set   Values
	Where Where
	Order Order
	Limit Limit
}

type DeleteQuery struct {
	Where Where
	Order Order
	Limit Limit
}
