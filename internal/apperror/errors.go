package apperror

import (
	"errors"
	"fmt"
)

// Sentinel values used with errors.Is. The typed errors below all match one
// of these, so callers can branch on category without caring about details.
var (
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrTransient    = errors.New("transient execution failure")
	ErrAmbiguous    = errors.New("ambiguous service match")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
)

// ConflictError signals that an operation would violate a uniqueness
// invariant (duplicate running session, duplicate active action). Never
// retried automatically.
type ConflictError struct {
	Resource string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Resource, e.Reason)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func Conflict(resource, format string, args ...interface{}) error {
	return &ConflictError{Resource: resource, Reason: fmt.Sprintf(format, args...)}
}

// InvalidStateError signals an operation that is not valid in the entity's
// current state. This is an ordering bug on the caller's side and is always
// surfaced, never swallowed.
type InvalidStateError struct {
	Entity    string
	Operation string
	Current   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: cannot %s while in state %q", e.Entity, e.Operation, e.Current)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

func InvalidState(entity, operation, current string) error {
	return &InvalidStateError{Entity: entity, Operation: operation, Current: current}
}

// TransientExecutionError wraps a recoverable failure of the external
// cancellation capability. Eligible for retry with backoff.
type TransientExecutionError struct {
	StatusCode int
	Err        error
}

func (e *TransientExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient execution failure: %v", e.Err)
	}
	return fmt.Sprintf("transient execution failure: status %d", e.StatusCode)
}

func (e *TransientExecutionError) Unwrap() error { return e.Err }

func (e *TransientExecutionError) Is(target error) bool { return target == ErrTransient }

// AmbiguousServiceError signals that catalog normalization matched two or
// more entries with equal weight. The detector must fall back to the raw
// hint rather than guess.
type AmbiguousServiceError struct {
	Hint       string
	Candidates []string
}

func (e *AmbiguousServiceError) Error() string {
	return fmt.Sprintf("service hint %q matches %d catalog entries with equal weight", e.Hint, len(e.Candidates))
}

func (e *AmbiguousServiceError) Is(target error) bool { return target == ErrAmbiguous }

// NotFoundError signals a missing entity.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError signals untrusted input that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
