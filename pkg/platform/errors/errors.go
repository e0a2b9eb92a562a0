// Package errors provides the coded error type shared by services and the
// HTTP transport.
//
// Codes target automated handlers (the transport maps them onto status
// codes); Msg is what a caller is shown. Op names the logical operation
// that failed, e.g. "catalog/CreateProduct".
//
//	&Error{
//	    Code: ENotFound,
//	    Msg:  fmt.Sprintf("product %s not found", id),
//	    Op:   "memory/ProductRepository.Get",
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

const (
	EInternal            = "internal error"
	ENotFound            = "not found"
	EConflict            = "conflict"
	EInvalid             = "invalid"
	EUnprocessableEntity = "unprocessable entity"
	EUnauthorized        = "unauthorized"
	EForbidden           = "forbidden"
	ETooManyRequests     = "too many requests"
	EMethodNotAllowed    = "method not allowed"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code string
	Msg  string
	Op   string
	Err  error
}

// Error implements the error interface by writing out the recursive messages.
func (e *Error) Error() string {
	if e.Msg != "" && e.Err != nil {
		var b strings.Builder
		b.WriteString(e.Msg)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
		return b.String()
	} else if e.Msg != "" {
		return e.Msg
	} else if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("<%s>", e.Code)
}

// Unwrap exposes the wrapped cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound builds an ENotFound error.
func NotFound(op, format string, args ...interface{}) *Error {
	return &Error{Code: ENotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Invalid wraps a validation failure as EInvalid.
func Invalid(op string, err error) *Error {
	return &Error{Code: EInvalid, Op: op, Msg: err.Error()}
}

// Conflict builds an EConflict error.
func Conflict(op, format string, args ...interface{}) *Error {
	return &Error{Code: EConflict, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// ErrorCode returns the code of the first coded error in the chain; plain
// errors report EInternal.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if !errors.As(err, &e) || e == nil {
		return EInternal
	}

	if e.Code != "" {
		return e.Code
	}

	if e.Err != nil {
		return ErrorCode(e.Err)
	}

	return EInternal
}

// ErrorOp returns the op of the error, if available; otherwise return empty string.
func ErrorOp(err error) string {
	var e *Error
	if !errors.As(err, &e) || e == nil {
		return ""
	}

	if e.Op != "" {
		return e.Op
	}

	if e.Err != nil {
		return ErrorOp(e.Err)
	}

	return ""
}

// ErrorMessage returns the human-readable message of the error, if available.
// Otherwise returns a generic error message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if !errors.As(err, &e) || e == nil {
		return "An internal error has occurred."
	}

	if e.Msg != "" {
		return e.Msg
	}

	if e.Err != nil {
		return ErrorMessage(e.Err)
	}

	return "An internal error has occurred."
}
