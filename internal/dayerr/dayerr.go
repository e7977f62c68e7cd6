// Package dayerr defines the error kinds surfaced by day operations.
// Handlers match kinds with errors.Is and map them to HTTP status codes.
package dayerr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrDecode             = errors.New("decode error")
	ErrIO                 = errors.New("io error")
)

// Error carries a human-readable message plus a kind reachable via errors.Is.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func newf(kind error, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return newf(ErrNotFound, format, args...)
}

func Conflictf(format string, args ...any) error {
	return newf(ErrConflict, format, args...)
}

func Invalidf(format string, args ...any) error {
	return newf(ErrInvalidInput, format, args...)
}

func Preconditionf(format string, args ...any) error {
	return newf(ErrPreconditionFailed, format, args...)
}

func Decodef(format string, args ...any) error {
	return newf(ErrDecode, format, args...)
}

func IOf(format string, args ...any) error {
	return newf(ErrIO, format, args...)
}
