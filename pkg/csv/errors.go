package csv

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionClosed is returned by any Reader operation after Close.
	ErrSessionClosed = errors.New("csv: reader closed")

	// ErrMissingField indicates a record has fewer fields than the
	// established width.
	ErrMissingField = errors.New("missing field")
)

// MissingFieldError reports a record rejected by field-count
// reconciliation. The Reader stays usable; the next Read continues with
// the following record.
type MissingFieldError struct {
	// Line is the physical line the record started on (1-indexed).
	Line int
	// Raw is the record's source text without its line terminator.
	Raw string
	// Index is the zero-based index of the first missing field.
	Index int
	// Expected is the established record width.
	Expected int
	// Got is the number of fields the record had.
	Got int
}

// Error returns a formatted error message with position information.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("parse error on line %d: %v: field %d absent, got %d of %d: %q",
		e.Line, ErrMissingField, e.Index, e.Got, e.Expected, e.Raw)
}

// Unwrap returns ErrMissingField.
func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}
