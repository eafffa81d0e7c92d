package errors

import (
	"strings"
	"unicode"
)

// ValidateNoteFilename validates a filename derived from person data before it
// is used to create a file on disk. Person names come straight from the GEDCOM
// input, so they must be treated as untrusted.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateNoteFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "note filename cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPath, "note filename too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "note filename contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPath, "note filename contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// SanitizeNoteFilename replaces characters that would make a person-derived
// filename invalid, so callers can always produce some note file even for
// unusual names. Path separators and control characters become spaces, and
// the result is trimmed.
func SanitizeNoteFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':' || unicode.IsControl(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
