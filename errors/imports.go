package errors

import (
	"fmt"
	"strings"
)

// MissingImportsError is returned when module loading fails because the
// caller's resolver could not satisfy one or more import symbols.
type MissingImportsError struct {
	Symbols []string
}

// NewMissingImportsError creates an error from a list of unresolved symbols.
func NewMissingImportsError(symbols []string) *MissingImportsError {
	return &MissingImportsError{Symbols: symbols}
}

func (e *MissingImportsError) Error() string {
	if len(e.Symbols) == 0 {
		return "[load] missing_import: no symbols specified"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("missing %d import symbol(s):\n", len(e.Symbols)))
	for _, s := range e.Symbols {
		b.WriteString("  - ")
		b.WriteString(s)
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *MissingImportsError) Is(target error) bool {
	_, ok := target.(*MissingImportsError)
	return ok
}
