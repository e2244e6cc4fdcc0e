package plasma

import (
	"errors"
	"fmt"
)

// Domain errors for genome construction and decoding.
var (
	// ErrInvalidGenome indicates a genome breaking a structural invariant or a limit.
	ErrInvalidGenome = errors.New("plasma: invalid genome")

	// ErrMalformedCode indicates a genome code that cannot be decoded.
	ErrMalformedCode = errors.New("plasma: malformed genome code")
)

// GenomeError wraps ErrInvalidGenome with the offending field.
type GenomeError struct {
	Field  string
	Reason string
}

func (e *GenomeError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidGenome.Error(), e.Field, e.Reason)
}

func (e *GenomeError) Unwrap() error {
	return ErrInvalidGenome
}

func invalid(field, format string, args ...any) error {
	return &GenomeError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
