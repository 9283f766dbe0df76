package types

import (
	"errors"
	"fmt"
)

// Error taxonomy. Schema violations are detected before any write and carry
// a human-readable message naming the offending part or key; storage errors
// wrap the underlying driver error; not-found errors indicate a lookup
// against an unknown character or key.
var (
	ErrSchemaViolation = errors.New("schema violation")
	ErrNotFound        = errors.New("not found")
	ErrInvalidName     = errors.New("invalid name")
)

// SchemaViolationf builds a descriptive error wrapping ErrSchemaViolation,
// so callers can both read the message and match with errors.Is.
func SchemaViolationf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrSchemaViolation)
}

// CheckName verifies that a character or sheet name is safe to embed in a
// store file name: alphanumerics, spaces, dashes and dots only.
func CheckName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name: %w", ErrInvalidName)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == ' ', r == '-', r == '.':
		default:
			return fmt.Errorf("name %q contains %q: %w", name, r, ErrInvalidName)
		}
	}
	return nil
}
