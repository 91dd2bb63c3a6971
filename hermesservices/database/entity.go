package database

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/lunagic/hermes/hermesservices/database/internal/utils"
)

var ErrUnsupportedType = errors.New("unsupported type")

// ValuesOf builds Values from the db tagged fields of entity. Read only and
// auto increment columns are left out.
func ValuesOf(entity any) (Values, error) {
	values := Values{}

	if err := utils.LoopOverStructFields(reflect.ValueOf(entity), func(fieldDefinition reflect.StructField, fieldValue reflect.Value) error {
		tag := utils.ParseTag(fieldDefinition.Tag)
		if tag.Column == "" || tag.ReadOnly || tag.AutoIncrement {
			return nil
		}

		values[tag.Column] = fieldValue.Interface()

		return nil
	}); err != nil {
		return nil, err
	}

	return values, nil
}

// ScanRows fills one T per row, matching columns to db tags. Columns
// without a matching field are ignored.
func ScanRows[T any](rows []Row) ([]T, error) {
	targets := []T{}

	for _, row := range rows {
		target := new(T)
		if err := utils.LoopOverStructFields(reflect.ValueOf(target), func(fieldDefinition reflect.StructField, fieldValue reflect.Value) error {
			tag := utils.ParseTag(fieldDefinition.Tag)
			if tag.Column == "" {
				return nil
			}

			value, found := row[tag.Column]
			if !found || value == nil {
				return nil
			}

			if err := assign(fieldValue, value); err != nil {
				return fmt.Errorf("column %s: %w", tag.Column, err)
			}

			return nil
		}); err != nil {
			return nil, err
		}

		targets = append(targets, *target)
	}

	return targets, nil
}

func assign(target reflect.Value, value any) error {
	source := reflect.ValueOf(value)
	if source.Type().AssignableTo(target.Type()) {
		target.Set(source)
		return nil
	}

	switch target.Kind() {
	case reflect.String:
		target.SetString(asString(value))
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		number, err := strconv.ParseInt(asString(value), 10, 64)
		if err != nil {
			return err
		}
		target.SetInt(number)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		number, err := strconv.ParseUint(asString(value), 10, 64)
		if err != nil {
			return err
		}
		target.SetUint(number)
		return nil
	case reflect.Float32, reflect.Float64:
		number, err := strconv.ParseFloat(asString(value), 64)
		if err != nil {
			return err
		}
		target.SetFloat(number)
		return nil
	case reflect.Bool:
		flag, err := strconv.ParseBool(asString(value))
		if err != nil {
			return err
		}
		target.SetBool(flag)
		return nil
	}

	if source.Type().ConvertibleTo(target.Type()) {
		target.Set(source.Convert(target.Type()))
		return nil
	}

	return fmt.Errorf("%w: %s into %s", ErrUnsupportedType, source.Type(), target.Type())
}

func asString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case []byte:
		return string(typed)
	case time.Time:
		return typed.Format(time.DateTime)
	}

	return fmt.Sprint(value)
}

func asStringPointer(value any) *string {
	if value == nil {
		return nil
	}

	s := asString(value)

	return &s
}

func asInt64(value any) int64 {
	switch typed := value.(type) {
	case int64:
		return typed
	case int:
		return int64(typed)
	case bool:
		if typed {
			return 1
		}
		return 0
	}

	number, _ := strconv.ParseInt(asString(value), 10, 64)

	return number
}
