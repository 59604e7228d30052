// Package validate holds small composable string validators used on HTTP
// query parameters and client-supplied display names.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Validator is a function that validates a string and returns an error if invalid
type Validator func(value string) error

// Field creates a labeled validator with a custom name for better error messages
func Field(name string, validators ...Validator) Validator {
	return func(value string) error {
		for _, v := range validators {
			if err := v(value); err != nil {
				if !strings.Contains(err.Error(), name) {
					return fmt.Errorf("%s: %w", name, err)
				}
				return err
			}
		}
		return nil
	}
}

// Required ensures the field is not empty
func Required() Validator {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("this field is required")
		}
		return nil
	}
}

// MaxLength checks maximum length
func MaxLength(max int) Validator {
	return func(v string) error {
		if len(v) > max {
			return fmt.Errorf("must be at most %d characters", max)
		}
		return nil
	}
}

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// VideoID restricts a video identifier to the URL-safe charset used by the
// catalog.
func VideoID() Validator {
	return func(v string) error {
		if !videoIDRe.MatchString(v) {
			return fmt.Errorf("contains invalid characters")
		}
		return nil
	}
}
