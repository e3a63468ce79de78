// Package serr holds the common error type shared across the stlc front end,
// runtime, and control plane. It provides an Error type that may wrap one or
// more causes and remain compatible with errors.Is, plus a handful of
// sentinel errors used by more than one package.
package serr

import "errors"

var (
	ErrNotFound      = errors.New("the requested entity could not be found")
	ErrAlreadyExists = errors.New("resource with same identifying information already exists")
	ErrBadArgument   = errors.New("one or more of the arguments is invalid")
	ErrPermissions   = errors.New("you don't have permission to do that")
	ErrBodyUnmarshal = errors.New("malformed data in request")
	ErrUnauthorized  = errors.New("missing or invalid bearer token")
)

// Error is a typed error used throughout stlc. It carries a message and zero
// or more causes. Calling errors.Is on an Error with any of its causes as the
// target returns true, so callers can check failure classes without manual
// type assertions.
//
// Error should not be constructed directly; use New or Wrap.
type Error struct {
	msg   string
	cause []error
}

// Error returns the message defined for the Error, concatenated with the
// result of calling Error() on its first cause if one is defined.
func (e Error) Error() string {
	if e.msg == "" && e.cause != nil {
		return e.cause[0].Error()
	}
	if e.cause != nil {
		return e.msg + ": " + e.cause[0].Error()
	}
	return e.msg
}

// Unwrap returns the causes of Error, or nil if none were defined.
func (e Error) Unwrap() []error {
	if len(e.cause) > 0 {
		return e.cause
	}
	return nil
}

// Is returns whether target is this Error or one of its causes.
func (e Error) Is(target error) bool {
	if errTarget, ok := target.(Error); ok {
		if e.msg == errTarget.msg && len(e.cause) == len(errTarget.cause) {
			allEqual := true
			for i := range e.cause {
				if e.cause[i] != errTarget.cause[i] {
					allEqual = false
					break
				}
			}
			if allEqual {
				return true
			}
		}
	}
	for _, c := range e.cause {
		if c == target {
			return true
		}
	}
	return false
}

// New creates an Error with the given message and optional causes.
func New(msg string, causes ...error) Error {
	e := Error{msg: msg}
	if len(causes) > 0 {
		e.cause = make([]error, len(causes))
		copy(e.cause, causes)
	}
	return e
}

// Wrap is shorthand for New("", causes...); it carries no message of its own,
// only the wrapped causes.
func Wrap(causes ...error) Error {
	return New("", causes...)
}
