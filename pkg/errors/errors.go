// Package errors provides structured error types for the libmerge application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input or library-tree validation failures
//   - MISSING_*: Required files absent from the library tree
//   - UNKNOWN_* / UNSUPPORTED_*: Per-corner request failures
//   - INTERNAL_*: Unexpected internal errors
//
// Most codes are fatal: they abort the run. UNKNOWN_CORNER and
// UNSUPPORTED_VARIANT are reported per corner and the run continues;
// use IsReported to distinguish the two tiers.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeKeyCollision, "duplicate key: %s", key)
//	if errors.Is(err, errors.ErrCodeKeyCollision) {
//	    // Handle merge collision
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFragment, origErr, "failed to decode %s", path)
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidCorner   Code = "INVALID_CORNER"
	ErrCodeInvalidCell     Code = "INVALID_CELL"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Library tree errors
	ErrCodeInvalidLibrary  Code = "INVALID_LIBRARY"
	ErrCodeInvalidFilename Code = "INVALID_FILENAME"
	ErrCodeMissingFile     Code = "MISSING_FILE"

	// Fragment and document errors
	ErrCodeInvalidFragment    Code = "INVALID_FRAGMENT"
	ErrCodeKeyCollision       Code = "KEY_COLLISION"
	ErrCodeInvalidString      Code = "INVALID_STRING"
	ErrCodeInvalidListAttr    Code = "INVALID_LIST_ATTRIBUTE"
	ErrCodeInvalidNumericList Code = "INVALID_NUMERIC_LIST"
	ErrCodeInvalidValue       Code = "INVALID_VALUE"

	// Per-corner request failures (reported, not fatal)
	ErrCodeUnknownCorner      Code = "UNKNOWN_CORNER"
	ErrCodeUnsupportedVariant Code = "UNSUPPORTED_VARIANT"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeWriteFailed Code = "WRITE_FAILED"
)

// reportedCodes are recorded per corner without aborting the run.
var reportedCodes = map[Code]bool{
	ErrCodeUnknownCorner:      true,
	ErrCodeUnsupportedVariant: true,
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

// IsReported reports whether err belongs to the reported tier: failures
// that are recorded against a single corner while the run continues.
// Everything else is fatal.
func IsReported(err error) bool {
	return reportedCodes[GetCode(err)]
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
