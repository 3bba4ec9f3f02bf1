package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the engine.
type ErrorCode string

const (
	// ErrStoreUnavailable marks a failed call into a memory store. It is
	// distinct from a deliberate empty recall, which is not an error.
	ErrStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// ErrInferenceFailed marks a failed generation call. Fatal to the
	// current turn only; the loop continues.
	ErrInferenceFailed ErrorCode = "INFERENCE_FAILED"

	// ErrTokenizerError marks a token counter failure. Callers above the
	// budget estimator never see this code.
	ErrTokenizerError ErrorCode = "TOKENIZER_ERROR"

	// ErrInvalidInput marks malformed configuration or profile data.
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
)

// Error is a structured error with a code, message, and optional cause.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// GetErrorCode extracts the error code from an error, unwrapping as needed.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}
