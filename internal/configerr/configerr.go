// Package configerr turns ozzo-validation results into field-level ConfigErrors.
package configerr

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// From converts the result of validation.ValidateStruct into a *ConfigError for
// the first offending field in name order. Field names are prefixed with prefix.
func From(prefix string, err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	fields := make([]string, 0, len(errs))
	for field, fieldErr := range errs {
		if fieldErr != nil {
			fields = append(fields, field)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	sort.Strings(fields)
	field := fields[0]
	var nested *ConfigError
	if errors.As(errs[field], &nested) {
		return &ConfigError{Field: prefix + field + "." + nested.Field, Message: nested.Message}
	}
	return &ConfigError{Field: prefix + field, Message: errs[field].Error()}
}

// Positive is a rule for durations and counts that must be greater than zero.
var Positive = validation.By(func(value any) error {
	if !positive(value) {
		return errors.New("must be greater than 0")
	}
	return nil
})

// NonNegative is a rule for durations and counts that must not be negative.
var NonNegative = validation.By(func(value any) error {
	if negative(value) {
		return errors.New("must be non-negative")
	}
	return nil
})

func positive(value any) bool {
	n, ok := asInt64(value)
	return ok && n > 0
}

func negative(value any) bool {
	n, ok := asInt64(value)
	return ok && n < 0
}
