package uptransport

import (
	"errors"
	"fmt"
)

// Code is the status code attached to every transport error. The
// numbering follows the uProtocol UCode values so codes survive a trip
// across the wire unchanged.
type Code uint32

const (
	CodeOK                Code = 0
	CodeInvalidArgument   Code = 3
	CodeDeadlineExceeded  Code = 4
	CodeNotFound          Code = 5
	CodeAlreadyExists     Code = 6
	CodeResourceExhausted Code = 8
	CodeInternal          Code = 13
	CodeUnavailable       Code = 14
)

// String returns the UCode name.
func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeInvalidArgument:
		return "INVALID_ARGUMENT"
	case CodeDeadlineExceeded:
		return "DEADLINE_EXCEEDED"
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeAlreadyExists:
		return "ALREADY_EXISTS"
	case CodeResourceExhausted:
		return "RESOURCE_EXHAUSTED"
	case CodeInternal:
		return "INTERNAL"
	case CodeUnavailable:
		return "UNAVAILABLE"
	default:
		return fmt.Sprintf("CODE(%d)", uint32(c))
	}
}

// Error is a structured transport error with operation context.
type Error struct {
	Op    string // operation that failed (e.g. "SEND", "REGISTER")
	Key   string // overlay key expression involved, if any
	Code  Code   // status code
	Msg   string // human-readable message
	Inner error  // wrapped error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Code.String()
	}
	switch {
	case e.Op != "" && e.Key != "":
		return fmt.Sprintf("uptransport: %s (op=%s key=%s)", msg, e.Op, e.Key)
	case e.Op != "":
		return fmt.Sprintf("uptransport: %s (op=%s)", msg, e.Op)
	default:
		return fmt.Sprintf("uptransport: %s", msg)
	}
}

// Unwrap returns the wrapped error for errors.Is/As support
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is matches errors by code so callers can compare against a bare
// &Error{Code: ...} target.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// NewError creates a new structured error
func NewError(op string, code Code, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

// WrapError wraps an existing error with transport context, keeping
// the code of an already-structured inner error.
func WrapError(op string, code Code, msg string, inner error) *Error {
	var te *Error
	if errors.As(inner, &te) {
		code = te.Code
	}
	return &Error{Op: op, Code: code, Msg: msg, Inner: inner}
}

// IsCode checks if an error matches a specific status code. A nil
// error is CodeOK.
func IsCode(err error, code Code) bool {
	if err == nil {
		return code == CodeOK
	}
	var te *Error
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}

// ErrCode extracts the status code from an error. Errors that are not
// structured transport errors report CodeInternal.
func ErrCode(err error) Code {
	if err == nil {
		return CodeOK
	}
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return CodeInternal
}
