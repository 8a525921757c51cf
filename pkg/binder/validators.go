package binder

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// dateValidator accepts calendar dates written as YYYY-MM-DD. The empty string
// passes so optional date fields can be left blank.
func dateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse(time.DateOnly, value)
	return err == nil
}
