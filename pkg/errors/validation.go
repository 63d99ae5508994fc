package errors

import (
	"slices"
	"strings"
	"unicode"
)

// MaxOrder bounds the vertex count accepted from users. Certificates are
// quadratic in the order.
const MaxOrder = 1 << 14

// ValidateOrder validates a vertex count read from user input.
func ValidateOrder(n int) error {
	if n < 0 {
		return New(ErrCodeInvalidInput, "vertex count cannot be negative: %d", n)
	}
	if n > MaxOrder {
		return New(ErrCodeInvalidInput, "vertex count %d exceeds the limit of %d", n, MaxOrder)
	}
	return nil
}

// ValidateVertex validates that v names a vertex of a graph of order n.
func ValidateVertex(v, n int) error {
	if v < 0 || v >= n {
		return New(ErrCodeInvalidInput, "vertex %d out of range [0, %d)", v, n)
	}
	return nil
}

// ValidateFormat validates that format is one of the allowed names.
func ValidateFormat(format string, allowed ...string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(allowed, format) {
		return New(ErrCodeInvalidFormat, "unknown format %q (want one of %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateHash validates a certificate hash: 64 lowercase hex digits.
func ValidateHash(hash string) error {
	if len(hash) != 64 {
		return New(ErrCodeInvalidInput, "hash must be 64 hex characters, got %d", len(hash))
	}
	for _, r := range hash {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return New(ErrCodeInvalidInput, "hash contains invalid character %q", r)
		}
	}
	return nil
}

// ValidatePath validates a file path given on the command line or in a
// config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}
	return nil
}
