package shared

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateRequiredLength checks a required text field against rune-length bounds
func ValidateRequiredLength(code, field, value string, min, max int) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return NewDomainError(code, fmt.Sprintf("%s is required", field))
	}
	return ValidateLength(code, field, value, min, max)
}

// ValidateLength checks an optional text field; empty values pass
func ValidateLength(code, field, value string, min, max int) error {
	if value == "" {
		return nil
	}
	n := utf8.RuneCountInString(value)
	if n < min {
		return NewDomainError(code, fmt.Sprintf("%s must be at least %d characters", field, min))
	}
	if max > 0 && n > max {
		return NewDomainError(code, fmt.Sprintf("%s cannot exceed %d characters", field, max))
	}
	return nil
}

// ValidateEmail checks an optional email address
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if len(email) > 200 {
		return NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

// NormalizeEmail lower-cases and trims an email for comparison
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
