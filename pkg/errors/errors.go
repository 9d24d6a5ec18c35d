// Package errors provides structured error types for assignpack.
//
// Every stage of the evidence pipeline returns errors built here so that callers
// can branch on what went wrong instead of matching strings:
//
//   - IO_ERROR: a filesystem or process-spawn failure, with the OS error as Cause
//   - INVALID_*, UNKNOWN_THEME, NO_COMPILER: input validation failures
//   - COMPILE_FAILED: the C compiler rejected the source; Message holds its output
//   - TIMEOUT: the captured program ran past the wall-clock limit
//   - IMAGE_ENCODING: the screenshot could not be rendered or encoded
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidColor, "invalid hex color %q", s)
//	if errors.Is(err, errors.ErrCodeInvalidColor) {
//	    // Handle bad theme file
//	}
//
//	if errors.KindOf(err) == errors.KindValidation {
//	    // Any validation failure
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidColor      Code = "INVALID_COLOR"
	ErrCodeInvalidName       Code = "INVALID_NAME"
	ErrCodeInvalidTemplate   Code = "INVALID_TEMPLATE"
	ErrCodeInvalidAssignment Code = "INVALID_ASSIGNMENT"
	ErrCodeUnknownTheme      Code = "UNKNOWN_THEME"
	ErrCodeNoCompiler        Code = "NO_COMPILER"

	// Filesystem and process errors
	ErrCodeIO Code = "IO_ERROR"

	// Program run errors
	ErrCodeCompileFailed Code = "COMPILE_FAILED"
	ErrCodeTimeout       Code = "TIMEOUT"

	// Screenshot errors
	ErrCodeImageEncoding Code = "IMAGE_ENCODING"
)

// Kind groups error codes into the broad failure categories callers report on.
type Kind int

const (
	KindUnknown Kind = iota
	KindIO
	KindValidation
	KindCompileFailed
	KindTimeout
	KindImageEncoding
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindValidation:
		return "validation"
	case KindCompileFailed:
		return "compile failed"
	case KindTimeout:
		return "timeout"
	case KindImageEncoding:
		return "image encoding"
	default:
		return "unknown"
	}
}

// Kind reports the category of the code.
func (c Code) Kind() Kind {
	switch c {
	case ErrCodeIO:
		return KindIO
	case ErrCodeInvalidInput, ErrCodeInvalidColor, ErrCodeInvalidName,
		ErrCodeInvalidTemplate, ErrCodeInvalidAssignment, ErrCodeUnknownTheme,
		ErrCodeNoCompiler:
		return KindValidation
	case ErrCodeCompileFailed:
		return KindCompileFailed
	case ErrCodeTimeout:
		return KindTimeout
	case ErrCodeImageEncoding:
		return KindImageEncoding
	default:
		return KindUnknown
	}
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IO wraps an OS error with the operation that failed.
func IO(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeIO, cause, format, args...)
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// KindOf returns the category of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	return GetCode(err).Kind()
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix, followed by
// the cause when there is one.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		switch {
		case e.Code == ErrCodeCompileFailed:
			return "compile failed:\n" + e.Message
		case e.Cause != nil:
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}
