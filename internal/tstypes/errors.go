// Package tstypes holds the value types shared by every stage of the
// pipeline: intervals, timing keys, columns, messages, correlated blocks,
// super-domain groups, sampled blocks and the sampled aggregate.
package tstypes

import (
	"errors"
	"fmt"
)

// Kind names the category of a request-level failure. Callers branch on
// Kind rather than on error string content.
type Kind string

const (
	KindStreamFailure      Kind = "stream-failure"
	KindBufferFailure      Kind = "buffer-failure"
	KindCorrelationFailure Kind = "correlation-failure"
	KindTimingMissing      Kind = "timing-missing"
	KindRangeError         Kind = "range-error"
	KindTypeConflict       Kind = "type-conflict"
	KindSizeMismatch       Kind = "size-mismatch"
	KindInvalidState       Kind = "invalid-state"
	KindCancelled          Kind = "cancelled"
	KindDeadlineExceeded   Kind = "deadline-exceeded"
)

// Error is the single canonical error type returned across the engine's
// API boundary. It carries the originating Kind plus an optional wrapped
// cause, so callers can use errors.Is/errors.As while still branching on
// Kind for coarse-grained dispatch.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds a canonical Error with no wrapped cause.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a canonical Error wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// IsKind reports whether err is, or wraps, a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
