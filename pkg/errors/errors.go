// Package errors provides structured error types for wrldbldr.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and API
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes map onto the generation error taxonomy:
//   - INVALID_*: configuration errors (malformed tile set, blueprint, input)
//   - PRECONDITION: a run that cannot be seeded or continued
//   - EXHAUSTED: section allocation or growth exhaustion
//   - BUSY, CANCELED: run lifecycle conditions
//   - INTERNAL_*: unexpected internal errors
//
// Expected structural conditions (frontier fallback, cross-region collision
// rejection) are never reported as errors.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidTileSet, "mask %03b has no tile", mask)
//	if errors.Is(err, errors.ErrCodeInvalidTileSet) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidTileSet   Code = "INVALID_TILESET"
	ErrCodeInvalidBlueprint Code = "INVALID_BLUEPRINT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"

	// Run errors
	ErrCodePrecondition Code = "PRECONDITION"
	ErrCodeExhausted    Code = "EXHAUSTED"
	ErrCodeBusy         Code = "BUSY"
	ErrCodeCanceled     Code = "CANCELED"

	// Resource errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
// It unwraps the error chain looking for the first coded error.
func Is(err error, code Code) bool {
	return code != "" && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is neither an *Error nor a *MaskError.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var me *MaskError
	if errors.As(err, &me) {
		return me.Code()
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

// MaskError reports a tile-set configuration error for a specific adjacency
// mask. The mask is kept so callers can report which neighborhood was not
// covered.
type MaskError struct {
	Mask    int
	TileSet string
}

// Error implements the error interface.
func (e *MaskError) Error() string {
	return fmt.Sprintf("mask %016b does not map to a valid tile in %q", e.Mask, e.TileSet)
}

// Code returns the error code for this error type.
func (e *MaskError) Code() Code {
	return ErrCodeInvalidTileSet
}
