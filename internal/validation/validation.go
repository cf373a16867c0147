package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned when a store category is not observations or forecasts.
var ErrUnknownCategory = errors.New("unknown category")

// ErrInvalidCode is returned when a station, office or area code is not a positive integer.
var ErrInvalidCode = errors.New("invalid code")

// ErrInvalidChoice is returned when a configured mode is not one of the accepted values.
var ErrInvalidChoice = errors.New("invalid choice")

// Categories lists the store categories in the order they are collected.
var Categories = []string{"observations", "forecasts"}

// ValidateCategory trims and lowercases input and checks it names a store category.
// Returns the normalized name or an error suitable for 404 UNKNOWN_CATEGORY responses.
func ValidateCategory(input string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	for _, c := range Categories {
		if s == c {
			return s, nil
		}
	}
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrUnknownCategory)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// ValidateCode checks that a JMA code is positive. JMA codes are numeric; leading zeros
// carry no meaning, so anything non-positive cannot match upstream.
func ValidateCode(name string, code int) error {
	if code <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidCode, name, code)
	}
	return nil
}

// ValidateChoice normalizes value (trim, lowercase) and checks it against allowed.
func ValidateChoice(name, value string, allowed ...string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if s == a {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %s must be one of %s, got %q", ErrInvalidChoice, name, strings.Join(allowed, "|"), value)
}
