// Package faults tags errors crossing component boundaries so callers can
// choose between fail-fast, skip-and-continue and retry without string matching.
package faults

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// Unknown is the zero kind for errors produced outside this package.
	Unknown Kind = iota
	// Configuration means the process is not usable until fixed (missing credentials).
	Configuration
	// Validation means the input was rejected before any external call.
	Validation
	// Transport means a network call or a non-2xx response failed; retryable as-is.
	Transport
	// Oracle means a scoring or tailoring call failed; recoverable per item.
	Oracle
	// Persistence means a write to the application store failed.
	Persistence
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Validation:
		return "validation"
	case Transport:
		return "transport"
	case Oracle:
		return "oracle"
	case Persistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is a kind-tagged error with an optional wrapped cause.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Is makes errors.Is match on the kind sentinel, e.g. errors.Is(err, &Error{Kind: Transport}).
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.msg == "" && other.err == nil && other.Kind == e.Kind
}

// New returns a tagged error with the given message.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, msg: msg}
}

// Errorf returns a tagged error with a formatted message. A trailing %w verb
// wraps the cause so errors.Is/As keep working through the tag.
func Errorf(kind Kind, format string, args ...any) error {
	wrapped := fmt.Errorf(format, args...)
	return &Error{Kind: kind, msg: wrapped.Error(), err: errors.Unwrap(wrapped)}
}

// Wrap tags an existing error. A nil err returns nil.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, msg: msg, err: err}
}

// KindOf returns the kind of err, or Unknown when err carries no tag.
func KindOf(err error) Kind {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return Unknown
}

// IsKind reports whether err is tagged with the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
