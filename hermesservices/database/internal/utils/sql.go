package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

var (
	paramFinder = regexp.MustCompile(`(?m):\w+`)
	spaceFinder = regexp.MustCompile(`(?m)\s^\s+`)
)

// Prepare rewrites the :name placeholders found in parameters into driver
// placeholders and returns the matching positional arguments.
func Prepare(statement string, parameters map[string]any, numberedParams bool) (string, []any, error) {
	statement = strings.TrimSpace(spaceFinder.ReplaceAllString(statement, " "))

	args := []any{}
	counter := 0
	paramBuilder := func() string {
		counter++
		if !numberedParams {
			return "?"
		}

		return fmt.Sprintf("$%d", counter)
	}

	newStatement := paramFinder.ReplaceAllStringFunc(statement, func(s string) string {
		parameterValue, found := parameters[s]
		if !found {
			return s
		}

		if isList(parameterValue) {
			localArgs := []string{}

			valueOf := reflect.ValueOf(parameterValue)
			for i := range valueOf.Len() {
				localArgs = append(localArgs, paramBuilder())
				args = append(args, valueOf.Index(i).Interface())
			}

			return strings.Join(localArgs, ", ")
		}

		args = append(args, parameterValue)

		return paramBuilder()
	})

	return newStatement, args, nil
}

// Inline renders the statement with every known placeholder replaced by a
// single-quoted literal. The text is for display only: quotes inside values
// are not escaped.
func Inline(statement string, parameters map[string]any) string {
	return paramFinder.ReplaceAllStringFunc(statement, func(s string) string {
		parameterValue, found := parameters[s]
		if !found {
			return s
		}

		if isList(parameterValue) {
			parts := []string{}

			valueOf := reflect.ValueOf(parameterValue)
			for i := range valueOf.Len() {
				parts = append(parts, quote(valueOf.Index(i).Interface()))
			}

			return strings.Join(parts, ", ")
		}

		return quote(parameterValue)
	})
}

func quote(value any) string {
	if value == nil {
		return "NULL"
	}

	return "'" + fmt.Sprint(value) + "'"
}

func isList(value any) bool {
	if value == nil {
		return false
	}

	rt := reflect.TypeOf(value)
	if rt.Kind() == reflect.Slice && rt.Elem().Kind() == reflect.Uint8 {
		// []byte is a single value
		return false
	}

	return rt.Kind() == reflect.Array || rt.Kind() == reflect.Slice
}
