// Package errors augments the standard errors package with sentinel
// values that carry a wrapped cause, so that pipeline stages can both
// classify failures with errors.Is and keep the underlying detail.
package errors

import (
	stderr "errors"
	"fmt"
)

var _ error = New("")

// New declares a new Error, typically assigned to a package-level sentinel.
func New(msg string) *Error {
	return &Error{msg: msg}
}

// Error is a sentinel with an optional nested cause.
//
// Unlike github.com/pkg/errors, wrapping starts from a declared error
// value rather than from text: status packages declare the sentinels and
// call sites attach causes to them.
type Error struct {
	msg string
	err error
}

// Error reports the sentinel message, followed by the cause when one is
// attached.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

// Unwrap yields the nested cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// Wrap returns a copy of the sentinel carrying err as its cause.
//
// The receiver is not mutated: the same sentinel may be wrapped
// concurrently with different causes.
func (e *Error) Wrap(err error) *Error {
	if e == nil {
		return nil
	}
	return &Error{msg: e.msg, err: err}
}

// WrapMessage returns a copy of the sentinel carrying a formatted message
// as its cause.
func (e *Error) WrapMessage(format string, args ...interface{}) *Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Is reports whether target matches this sentinel or anything it wraps.
func (e *Error) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if o, ok := target.(*Error); ok && o != nil {
		return e.msg == o.msg
	}
	return false
}

// As finds the first error in err's chain that matches target
// (a shortcut to the standard library errors.As).
func As(err error, target interface{}) bool {
	return stderr.As(err, target)
}

// Is reports whether any error in err's chain matches target
// (a shortcut to the standard library errors.Is).
func Is(err, target error) bool {
	return stderr.Is(err, target)
}
