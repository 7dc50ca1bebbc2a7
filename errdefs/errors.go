// Package errdefs defines the engine's error taxonomy (spec.md §7) and the
// context-prepending helpers every layer uses when it re-throws an error
// from a lower layer.
package errdefs

import (
	"fmt"

	"github.com/palantir/stacktrace"
	"github.com/pkg/errors"
)

// Kind names one of the five error categories from spec.md §7.
type Kind int

const (
	// Syntax: the parser could not form a tree.
	Syntax Kind = iota
	// LoadIO: missing file, bad include, undefined macro, redefinition,
	// reserved word.
	LoadIO
	// TypeMismatch: an expression's resolved kind does not match the
	// target slot. Recoverable by the proxy-fallback binder only.
	TypeMismatch
	// ArgumentInvalid: parameter count mismatch, duplicate key, malformed
	// bitset, cycle, unresolved symbol, wrong factory kind, library
	// failed to open.
	ArgumentInvalid
	// Runtime: raised by a user constructor.
	Runtime
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "syntax error"
	case LoadIO:
		return "load error"
	case TypeMismatch:
		return "type mismatch"
	case ArgumentInvalid:
		return "invalid argument"
	case Runtime:
		return "runtime error"
	default:
		return "error"
	}
}

// Error is the concrete error type returned by every engine component.
// It always carries a Kind so that the proxy-fallback binder (the only
// place the spec allows a caught, retried error) can test for
// TypeMismatch specifically rather than string-matching messages.
type Error struct {
	Kind Kind
	msg  string
	err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s", e.msg, e.err.Error())
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// New constructs a bare Error of the given kind.
func New(kind Kind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, a...), err: errors.New(fmt.Sprintf(format, a...))}
}

// Wrap attaches kind to an existing error, keeping it as the Unwrap cause.
func Wrap(kind Kind, err error, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, a...), err: err}
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Propagate prepends local context to err and returns it, preserving its
// Kind if err is already a typed *Error (matching spec.md §7's "every
// layer that re-throws must prepend its local context"). If err is not a
// typed *Error, it is wrapped as ArgumentInvalid, the taxonomy's catch-all
// for errors surfacing across a layer boundary without prior typing.
//
// This mirrors the teacher's codegen/decl.go use of
// stacktrace.Propagate(err, "") to prepend call-site context while
// preserving the original error as the chain's cause.
func Propagate(err error, format string, a ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, a...)
	var e *Error
	if errors.As(err, &e) {
		return &Error{Kind: e.Kind, msg: msg, err: stacktrace.Propagate(err, msg)}
	}
	return &Error{Kind: ArgumentInvalid, msg: msg, err: stacktrace.Propagate(err, msg)}
}

// ParameterContext prepends "parameter N (name)" context, the one piece of
// context every binder in package binder must add before propagating
// (spec.md §4.G: "Every binder prefixes any surfaced error with the
// parameter index (1-based) and the variable text that was being
// evaluated").
func ParameterContext(err error, index int, text string) error {
	return Propagate(err, "parameter %d (%s)", index, text)
}
