package errors

import (
	"strings"
	"unicode"
)

// ValidateBaseName validates an output base name (the file name of a
// generated .ico/.icns container, without extension).
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateBaseName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "output name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "output name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "output name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidName, "output name cannot contain path separators")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidName, "output name cannot contain traversal sequences (..)")
	}

	return nil
}
