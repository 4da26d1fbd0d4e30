package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is matched by every NotFoundError
	ErrNotFound = errors.New("not found")

	// ErrConflict means a concurrent writer won the create critical section.
	// Callers should retry the whole validate-then-write sequence.
	ErrConflict = errors.New("schedule conflict")
)

// FormatError reports malformed time or date input
type FormatError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// NotFoundError reports an unknown employee or store
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationFailure is returned when one or more ERROR violations refuse a schedule
type ValidationFailure struct {
	Result ValidationResult
}

func (e *ValidationFailure) Error() string {
	errs := e.Result.BySeverity(SeverityError)
	msgs := make([]string, 0, len(errs))
	for _, v := range errs {
		msgs = append(msgs, v.String())
	}
	return fmt.Sprintf("schedule rejected with %d error(s): %s", len(errs), strings.Join(msgs, "; "))
}
