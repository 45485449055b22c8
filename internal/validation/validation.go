// Package validation checks tool arguments before any upstream call is made.
package validation

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ValidationError reports a missing or malformed argument.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// check runs tag against value and converts a failure to a ValidationError.
func check(field string, value any, tag, reason string) error {
	if err := instance().Var(value, tag); err != nil {
		return &ValidationError{Field: field, Reason: reason}
	}
	return nil
}

// Required fails when value is empty after trimming.
func Required(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if err := check(field, value, "required", "is required"); err != nil {
		return "", err
	}
	return value, nil
}

// Email validates and trims an email address.
func Email(field, value string) (string, error) {
	value, err := Required(field, value)
	if err != nil {
		return "", err
	}
	if err := check(field, value, "email", fmt.Sprintf("%q is not an email address", value)); err != nil {
		return "", err
	}
	return value, nil
}

// Date validates a YYYY-MM-DD calendar date.
func Date(field, value string) (string, error) {
	value, err := Required(field, value)
	if err != nil {
		return "", err
	}
	if err := check(field, value, "datetime="+DateLayout, fmt.Sprintf("%q is not a YYYY-MM-DD date", value)); err != nil {
		return "", err
	}
	return value, nil
}

// Clock validates a 24-hour "HH:MM" time of day.
func Clock(field, value string) (string, error) {
	value, err := Required(field, value)
	if err != nil {
		return "", err
	}
	if len(value) != len(ClockLayout) {
		return "", &ValidationError{Field: field, Reason: fmt.Sprintf("%q is not an HH:MM time", value)}
	}
	if err := check(field, value, "datetime="+ClockLayout, fmt.Sprintf("%q is not an HH:MM time", value)); err != nil {
		return "", err
	}
	return value, nil
}

// TimeZone validates an IANA zone name and loads it.
func TimeZone(field, value string) (*time.Location, error) {
	value, err := Required(field, value)
	if err != nil {
		return nil, err
	}
	if err := check(field, value, "timezone", fmt.Sprintf("%q is not an IANA time zone", value)); err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(value)
	if err != nil {
		return nil, &ValidationError{Field: field, Reason: err.Error()}
	}
	return loc, nil
}

// TimeZoneOr loads value, or fallback when value is empty.
func TimeZoneOr(field, value string, fallback *time.Location) (*time.Location, error) {
	if strings.TrimSpace(value) == "" && fallback != nil {
		return fallback, nil
	}
	return TimeZone(field, value)
}
