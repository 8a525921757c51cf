package binder

import (
	"reflect"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/stretchr/testify/assert"
)

type mockFieldError struct {
	tag   string
	field string
	param string
	kind  reflect.Kind
}

func (e *mockFieldError) Error() string           { return "Mock Field Error" }
func (e *mockFieldError) Tag() string             { return e.tag }
func (e *mockFieldError) ActualTag() string       { return e.tag }
func (e *mockFieldError) Namespace() string       { return "" }
func (e *mockFieldError) StructNamespace() string { return "" }
func (e *mockFieldError) Field() string           { return e.field }
func (e *mockFieldError) StructField() string     { return "" }
func (e *mockFieldError) Value() interface{}      { return "" }
func (e *mockFieldError) Param() string           { return e.param }
func (e *mockFieldError) Kind() reflect.Kind {
	if e.kind == 0 {
		return reflect.String
	}
	return e.kind
}
func (e *mockFieldError) Type() reflect.Type               { return reflect.TypeOf("") }
func (e *mockFieldError) Translate(_ ut.Translator) string { return "" }

func TestFormatValidationError(t *testing.T) {
	cases := []struct {
		tag   string
		param string
		kind  reflect.Kind
		msg   string
	}{
		{date, "", 0, `"title" should be in the format of YYYY-MM-DD`},
		{mx, "300", reflect.String, `"title" length must be less than or equal to 300 characters`},
		{mx, "1", reflect.String, `"title" length must be less than or equal to 1 character`},
		{mx, "50", reflect.Int, `"title" must be less than or equal to 50`},
		{mn, "1", reflect.String, `"title" length must be greater than or equal to 1 character`},
		{mn, "0", reflect.Int, `"title" must be greater than or equal to 0`},
		{mn, "1", reflect.Int64, `"title" must be greater than or equal to 1`},
		{required, "", 0, `"title" is required`},
		{requiredWith, "CoverImageName", 0, `"title" is required when cover_image_name is set`},
		{"unique", "", 0, `"title" is invalid`},
	}

	for _, tt := range cases {
		err := mockFieldError{tag: tt.tag, field: "title", param: tt.param, kind: tt.kind}
		msg := formatValidationError(&err)
		assert.Equal(t, tt.msg, msg)
	}
}
