package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalid wraps every validation failure so callers can tell bad input
// apart from infrastructure errors.
var ErrInvalid = errors.New("invalid input")

// Normalize trims surrounding whitespace and converts to NFC so that lengths
// and comparisons are stable across clients.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Length counts characters, not bytes.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}

// ValidateText checks an already normalized optional field against max.
func ValidateText(field, s string, max int) error {
	if Length(s) > max {
		return fmt.Errorf("%w: %s is too long (max %d characters)", ErrInvalid, field, max)
	}
	return nil
}

// ValidateRequired is ValidateText for fields that must not be empty.
func ValidateRequired(field, s string, max int) error {
	if s == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, field)
	}
	return ValidateText(field, s, max)
}
