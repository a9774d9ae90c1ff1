package reminder

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvedDateExpression means the date resolver could not interpret an expression.
	// The reminder is left untouched in the source so it can be fixed and retried.
	ErrUnresolvedDateExpression = errors.New("unresolved date expression")

	// ErrMissingAppendAnchor means a destination note does not contain the configured header.
	ErrMissingAppendAnchor = errors.New("append anchor not found")

	// ErrAmbiguousRawMatch means a reminder line could not be located in the remaining source text.
	ErrAmbiguousRawMatch = errors.New("reminder line not found in source")

	// ErrMissingDateCapability rejects a whole run when no date resolver is available.
	ErrMissingDateCapability = errors.New("date resolver unavailable")
)

// ReminderError reports a failure scoped to a single reminder line.
type ReminderError struct {
	Line       int
	Raw        string
	Expression string
	Err        error
}

func (e *ReminderError) Error() string {
	if e.Expression != "" {
		return fmt.Sprintf("line %d %q (when %q): %v", e.Line, e.Raw, e.Expression, e.Err)
	}
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Raw, e.Err)
}

func (e *ReminderError) Unwrap() error { return e.Err }

// DestinationError reports a failure scoped to one destination note.
type DestinationError struct {
	Destination string
	Err         error
}

func (e *DestinationError) Error() string {
	return fmt.Sprintf("destination %s: %v", e.Destination, e.Err)
}

func (e *DestinationError) Unwrap() error { return e.Err }
