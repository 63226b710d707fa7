package http

import (
	"fmt"
	"net/http"
)

// AppError represents an application-level error with an HTTP status
// and the caller-facing fields {code, message, retryable}.
type AppError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Status    int    `json:"-"`
	Err       error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code, message string, status int, retryable bool) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Status:    status,
		Retryable: retryable,
	}
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// TickerNotFoundError creates the fatal bad-input error.
func TickerNotFoundError(message string) *AppError {
	return NewAppError("TICKER_NOT_FOUND", message, http.StatusNotFound, false)
}

// InsufficientDataError creates the structural no-data error.
func InsufficientDataError(message string) *AppError {
	return NewAppError("INSUFFICIENT_DATA", message, http.StatusUnprocessableEntity, false)
}

// ModelError creates the narrative-service error. Kept for taxonomy
// completeness; the pipeline normally absorbs narrative failures.
func ModelError(message string) *AppError {
	return NewAppError("MODEL_ERROR", message, http.StatusBadGateway, true)
}

// InternalError creates a 500 error.
func InternalError(message string, retryable bool) *AppError {
	return NewAppError("INTERNAL_ERROR", message, http.StatusInternalServerError, retryable)
}
