// Package validation runs struct-tag validation on request bodies and turns
// the first failure into a domain validation error.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	dErrors "elan/pkg/domain-errors"
)

var (
	mu       sync.RWMutex
	validate = newValidator()
	messages = map[string]string{}
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// RegisterValidation adds a string tag. msg is appended to the field name when
// the check fails, e.g. "role is not a known role". Call from init.
func RegisterValidation(tag, msg string, fn func(string) bool) {
	mu.Lock()
	defer mu.Unlock()
	_ = validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
	messages[tag] = msg
}

// Validate checks req against its validate tags.
func Validate(req any) error {
	mu.RLock()
	err := validate.Struct(req)
	mu.RUnlock()
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// ErrorMessage renders the first validator failure using the JSON field name.
func ErrorMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid request body"
	}

	fe := fieldErrs[0]
	field := fe.Field()
	if field == "" {
		return "invalid request body"
	}

	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	}

	mu.RLock()
	msg, ok := messages[fe.ActualTag()]
	mu.RUnlock()
	if ok {
		return fmt.Sprintf("%s %s", field, msg)
	}
	return fmt.Sprintf("%s is invalid", field)
}
