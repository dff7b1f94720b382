package hdict

import (
	"errors"
	"fmt"
)

// Error codes reported in Error.Code.
const (
	ErrInvalidArguments = "ERR_INVALID_ARGUMENTS"
	ErrKeyNotFound      = "ERR_KEY_NOT_FOUND"
	ErrSerialization    = "ERR_SERIALIZATION"
	ErrParse            = "ERR_PARSE"
	ErrInvalidShape     = "ERR_INVALID_SHAPE"
	ErrLimitDepth       = "ERR_LIMIT_DEPTH"
)

// Error is the error type returned by every HDict operation.
// Callers compare the Code field against the ERR_* constants.
type Error struct {
	Code string
	Msg  string
	// Offset is the byte offset of a JSON syntax error (ERR_PARSE only).
	Offset int64
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Msg)
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newErr(code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

func wrapErr(code string, err error, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Err: err}
}

// HasCode reports whether err, or any error it wraps, is an *Error with
// the given code.
func HasCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
