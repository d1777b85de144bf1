package testutils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewTestValidator creates a new validator instance for testing.
// Field errors are reported with their YAML names, matching the loader.
func NewTestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
