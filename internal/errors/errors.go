// Package errors provides error code definitions shared across SafeGain.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode identifies a category of failure surfaced to the embedding UI.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrValidation ErrorCode = "VALIDATION_ERROR"

	// Record store errors
	ErrStorage   ErrorCode = "STORAGE_ERROR"
	ErrMigration ErrorCode = "MIGRATION_FAILED"

	// Analysis errors
	ErrTransport     ErrorCode = "TRANSPORT_ERROR"
	ErrParse         ErrorCode = "PARSE_ERROR"
	ErrNotConfigured ErrorCode = "NOT_CONFIGURED"

	// Settings errors
	ErrCrypto ErrorCode = "CRYPTO_FAILED"
)

// AppError carries an error code, a user-presentable message and the cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is reports whether err, or any error in its chain, carries the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
