// Package qerr defines the structured errors the gateway reports to its
// host: a kind, the index of the offending statement where one exists, and
// a message safe to hand back to the caller verbatim.
package qerr

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway error.
type Kind string

const (
	// ValidationRejected: the classifier denied a statement. Detected
	// locally, before the database is touched.
	ValidationRejected Kind = "validation_rejected"
	// ResourceLimitExceeded: too many statements in one batch. Also detected
	// before any execution.
	ResourceLimitExceeded Kind = "resource_limit_exceeded"
	// ExecutionFailed: the database reported an error mid-batch.
	ExecutionFailed Kind = "execution_failed"
	// ConnectionUnavailable: the database cannot be reached.
	ConnectionUnavailable Kind = "connection_unavailable"
	// Timeout: the per-request deadline elapsed with a statement in flight.
	Timeout Kind = "timeout"
)

// Error is the gateway's structured error. Index is the zero-based position
// of the statement the error refers to, or -1 when none applies.
type Error struct {
	Kind    Kind
	Index   int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s (statement %d): %s", e.Kind, e.Index, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error not tied to any particular statement.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Index: -1, Message: fmt.Sprintf(format, args...)}
}

// At builds an Error tied to the statement at index.
func At(kind Kind, index int, format string, args ...any) *Error {
	return &Error{Kind: kind, Index: index, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error around an underlying cause, keeping its message
// verbatim. index may be -1.
func Wrap(kind Kind, index int, err error) *Error {
	return &Error{Kind: kind, Index: index, Message: err.Error(), Err: err}
}

// KindOf returns the kind of err if it is (or wraps) an *Error, else "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
