package validator

import (
	"net/mail"
	"strings"
)

const MinPasswordLength = 8

// ValidateEmail validates an email address
func ValidateEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// ValidatePassword checks the minimum password requirement
func ValidatePassword(password string) bool {
	return len(password) >= MinPasswordLength
}

// ValidateName validates a display name
func ValidateName(name string) bool {
	name = strings.TrimSpace(name)
	return len(name) >= 2 && len(name) <= 100
}

// ValidateLength reports whether the trimmed string is within [min,max].
// Used for post titles, post/comment/story content.
func ValidateLength(s string, min, max int) bool {
	n := len(strings.TrimSpace(s))
	return n >= min && n <= max
}

// SanitizeString trims whitespace and limits length
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}

// SanitizeEmail normalizes an email address. Uniqueness is checked
// case-insensitively, so every stored email is lowered here first.
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
