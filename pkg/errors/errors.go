// Package errors provides structured error types for the viz application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and web front ends
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// Every failure in the core is a local validation failure: the input file had
// an unknown suffix, a referenced column does not exist, a chart type is not
// in the supported set. There are no retryable or fatal conditions; callers
// correct their input and call again.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeColumnNotFound, "column %q not found", name)
//	if errors.Is(err, errors.ErrCodeColumnNotFound) {
//	    // Handle missing column
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input format errors
	ErrCodeUnsupportedFormat       Code = "UNSUPPORTED_FORMAT"
	ErrCodeUnsupportedExportFormat Code = "UNSUPPORTED_EXPORT_FORMAT"

	// Column resolution errors
	ErrCodeColumnNotFound  Code = "COLUMN_NOT_FOUND"
	ErrCodeColumnsNotFound Code = "COLUMNS_NOT_FOUND"

	// Transform validation errors
	ErrCodeAmbiguousUnpivotSpec   Code = "AMBIGUOUS_UNPIVOT_SPEC"
	ErrCodeIndexOutOfRange        Code = "INDEX_OUT_OF_RANGE"
	ErrCodeAmbiguousLookupMapping Code = "AMBIGUOUS_LOOKUP_MAPPING"

	// Chart assembly errors
	ErrCodeUnsupportedChartType Code = "UNSUPPORTED_CHART_TYPE"
	ErrCodeEmptyFacetSet        Code = "EMPTY_FACET_SET"

	// Renderer errors
	ErrCodeUnknownRenderer Code = "UNKNOWN_RENDERER"

	// General errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
)

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

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
