package middleware

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateID checks patient, doctor and record identifiers.
func ValidateID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s cannot be empty", kind)
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid %s format (alphanumeric, dash, underscore only, max 64 chars)", kind)
	}
	return nil
}

// ValidateFileName rejects names that could escape an object key prefix.
func ValidateFileName(name string) error {
	if name == "" {
		return nil // optional
	}
	if len(name) > 255 {
		return fmt.Errorf("file name too long")
	}
	for _, d := range []string{"..", "/", "\\", "\x00", "\n", "\r"} {
		if strings.Contains(name, d) {
			return fmt.Errorf("invalid characters in file name")
		}
	}
	return nil
}

// ValidateAge accepts nil or 0..150.
func ValidateAge(age *int) error {
	if age == nil {
		return nil
	}
	if *age < 0 || *age > 150 {
		return fmt.Errorf("age must be between 0 and 150")
	}
	return nil
}

// SanitizeString removes null bytes and control characters
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// ParseLimit reads a pagination limit query value.
func ParseLimit(raw string) int {
	n, _ := strconv.Atoi(raw)
	return ValidateLimit(n)
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ParseReviewed reads the optional reviewed filter ("", "true", "false").
func ParseReviewed(raw string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("reviewed must be true or false")
	}
	return &b, nil
}
