package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/iancoleman/strcase"
	"github.com/segmentio/encoding/json"
)

const (
	date         = "date"
	mx           = "max"
	mn           = "min"
	required     = "required"
	requiredWith = "required_with"
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case date:
		return fmt.Sprintf("%q should be in the format of YYYY-MM-DD", field)
	case mx:
		return formatBound(field, "less than or equal to", err)
	case mn:
		return formatBound(field, "greater than or equal to", err)
	case required:
		return fmt.Sprintf("%q is required", field)
	case requiredWith:
		return fmt.Sprintf("%q is required when %s is set", field, strcase.ToSnake(err.Param()))
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

// formatBound describes a failed min or max. Numbers are bounded by value and
// everything else by length in characters.
func formatBound(field, comparison string, err validator.FieldError) string {
	//exhaustive:ignore
	switch err.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%q must be %s %s", field, comparison, err.Param())
	default:
		resource := "character"
		if err.Param() != "1" {
			resource += "s"
		}
		return fmt.Sprintf("%q length must be %s %s %s", field, comparison, err.Param(), resource)
	}
}
