// Package status defines the closed set of result codes returned by every
// public operation in this module, following the sentinel-error convention
// the rest of this codebase borrows from the teacher's ADR-021 pattern —
// except here the sentinels are values of one enum instead of a grab-bag of
// package-level errors, so callers can both switch on status.Code and use
// errors.Is/errors.As against the wrapping *Error.
package status

import (
	"errors"
	"fmt"
)

// Code is a discrete result code. SUCCESS is always the zero value.
type Code int

const (
	SUCCESS Code = iota
	END_OF_DATA
	INVALID_POINTER
	INVALID_HANDLE
	INVALID_ARGUMENT
	INVALID_STATE
	INVALID_SHAPE
	INVALID_STRIDE
	INVALID_DTYPE
	UNSUPPORTED
	UNSUPPORTED_DTYPE
	UNSUPPORTED_SPACE
	UNSUPPORTED_STRIDE
	FAILED_TO_CONVERGE
	INSUFFICIENT_STORAGE
	DEVICE_ERROR
	INTERRUPTED
	INTERNAL_ERROR
)

var names = [...]string{
	SUCCESS:               "SUCCESS",
	END_OF_DATA:           "END_OF_DATA",
	INVALID_POINTER:       "INVALID_POINTER",
	INVALID_HANDLE:        "INVALID_HANDLE",
	INVALID_ARGUMENT:      "INVALID_ARGUMENT",
	INVALID_STATE:         "INVALID_STATE",
	INVALID_SHAPE:         "INVALID_SHAPE",
	INVALID_STRIDE:        "INVALID_STRIDE",
	INVALID_DTYPE:         "INVALID_DTYPE",
	UNSUPPORTED:           "UNSUPPORTED",
	UNSUPPORTED_DTYPE:     "UNSUPPORTED_DTYPE",
	UNSUPPORTED_SPACE:     "UNSUPPORTED_SPACE",
	UNSUPPORTED_STRIDE:    "UNSUPPORTED_STRIDE",
	FAILED_TO_CONVERGE:    "FAILED_TO_CONVERGE",
	INSUFFICIENT_STORAGE:  "INSUFFICIENT_STORAGE",
	DEVICE_ERROR:          "DEVICE_ERROR",
	INTERRUPTED:           "INTERRUPTED",
	INTERNAL_ERROR:        "INTERNAL_ERROR",
}

// String renders the code's symbolic name, or a numeric fallback for a code
// outside the known range.
func (c Code) String() string {
	if int(c) < 0 || int(c) >= len(names) {
		return fmt.Sprintf("Code(%d)", int(c))
	}
	return names[c]
}

// OK reports whether the code represents success.
func (c Code) OK() bool { return c == SUCCESS }

// Error wraps a Code with the operation that produced it and, optionally, an
// underlying cause. It implements the error interface so it can flow through
// ordinary Go error handling while still exposing the discrete Code to
// callers that need it (e.g. a C-ABI shim translating back to an int).
type Error struct {
	Code Code
	Op   string // operation name, e.g. "ndarray.Malloc"
	Err  error  // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "status: <nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error for op with no underlying cause.
func New(code Code, op string) *Error {
	return &Error{Code: code, Op: op}
}

// Wrap builds an *Error for op, carrying err as the underlying cause.
func Wrap(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// From extracts the Code carried by err, or INTERNAL_ERROR if err is not (or
// does not wrap) a *Error. A nil err yields SUCCESS.
func From(err error) Code {
	if err == nil {
		return SUCCESS
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return INTERNAL_ERROR
}
