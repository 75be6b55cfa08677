// Package errors provides structured error types for depviz.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across all commands
//   - Machine-readable error codes mapped to process exit codes
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Missing files or executables
//   - PARSE_FAILURE, RENDER_FAILURE: Stage-specific terminal failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s", format)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeParseFailure, origErr, "decode %s", path)
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidEngine Code = "INVALID_ENGINE"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Terminal failures of the load stage
	ErrCodeInputNotFound Code = "INPUT_NOT_FOUND"
	ErrCodeParseFailure  Code = "PARSE_FAILURE"

	// Terminal failures of the render stage
	ErrCodeEngineNotFound Code = "ENGINE_NOT_FOUND"
	ErrCodeRenderFailure  Code = "RENDER_FAILURE"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// ExitCode maps an error to a process exit code.
// Each terminal failure of the load → build → render path gets its own code
// so shell scripts and CI can tell the failure classes apart.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch GetCode(err) {
	case ErrCodeInputNotFound:
		return 2
	case ErrCodeParseFailure:
		return 3
	case ErrCodeEngineNotFound:
		return 4
	case ErrCodeRenderFailure:
		return 5
	default:
		return 1
	}
}
