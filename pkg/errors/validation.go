package errors

import (
	"strings"
	"unicode"
)

// pathUnsafeChars are rejected in identifiers because they end up in file and
// folder names on every supported platform.
const pathUnsafeChars = `<>:"/\|?*`

// ValidateIdentifier checks a whitespace-free identifier such as a student name
// or ID before it is used in output file names.
//
// The validation rules:
//   - No empty values
//   - No control characters
//   - None of <>:"/\|?*
func ValidateIdentifier(label, value string) error {
	if value == "" {
		return New(ErrCodeInvalidName, "%s cannot be empty", label)
	}

	for _, r := range value {
		if unicode.IsControl(r) || strings.ContainsRune(pathUnsafeChars, r) {
			return New(ErrCodeInvalidName, "invalid character in %s: '%c'", label, r)
		}
	}

	return nil
}

// ValidateThemeName validates a custom theme name before it is joined onto the
// themes directory. Nested names ("work/dark") are allowed; traversal is not.
func ValidateThemeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "theme name cannot be empty")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "theme name contains invalid control characters")
		}
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "theme name cannot contain path traversal sequences (..)")
	}

	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") {
		return New(ErrCodeInvalidInput, "theme name must be relative")
	}

	return nil
}
