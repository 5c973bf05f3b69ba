package timesheet

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("timesheet not found")
	ErrForbidden         = errors.New("caller is not allowed to perform this action")
	ErrInvalidState      = errors.New("timesheet status does not allow this transition")
	ErrDuplicateWeekTask = errors.New("a timesheet already exists for this week, project and task")
)

// ValidationError reports malformed or out-of-range input. It is always
// recoverable by the caller correcting the payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
