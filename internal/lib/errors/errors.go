package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode is the machine-readable code rendered with every failed response
type ErrorCode string

const (
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"

	ErrCodeDatabaseError  ErrorCode = "DATABASE_ERROR"
	ErrCodeInternalError  ErrorCode = "INTERNAL_ERROR"
	ErrCodeServiceUnavail ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout        ErrorCode = "TIMEOUT"
	ErrCodeUpstream       ErrorCode = "UPSTREAM_ERROR"
)

// APIError carries what a handler tells the caller; the underlying cause stays in the logs
type APIError struct {
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	HTTPStatus int               `json:"-"`
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %s (details: %v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) WithDetail(key, value string) *APIError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

func newAPIError(code ErrorCode, status int, message string) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

func NewValidationError(message string) *APIError {
	return newAPIError(ErrCodeValidation, http.StatusBadRequest, message)
}

func NewBadRequestError(message string) *APIError {
	return newAPIError(ErrCodeBadRequest, http.StatusBadRequest, message)
}

func NewUnauthorizedError(message string) *APIError {
	return newAPIError(ErrCodeUnauthorized, http.StatusUnauthorized, message)
}

func NewNotFoundError(resource string) *APIError {
	return newAPIError(ErrCodeNotFound, http.StatusNotFound, resource+" not found")
}

func NewNotFoundErrorWithID(resource, id string) *APIError {
	return NewNotFoundError(resource).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

// NewDatabaseError hides the cause; operation names the failed step
func NewDatabaseError(operation string) *APIError {
	return newAPIError(ErrCodeDatabaseError, http.StatusInternalServerError, "Database operation failed").
		WithDetail("operation", operation)
}

func NewInternalError(message string) *APIError {
	if message == "" {
		message = "An internal error occurred"
	}
	return newAPIError(ErrCodeInternalError, http.StatusInternalServerError, message)
}

func NewServiceUnavailableError(service string) *APIError {
	return newAPIError(ErrCodeServiceUnavail, http.StatusServiceUnavailable, "Service temporarily unavailable").
		WithDetail("service", service)
}

func NewTimeoutError(operation string) *APIError {
	return newAPIError(ErrCodeTimeout, http.StatusGatewayTimeout, "Operation timed out").
		WithDetail("operation", operation)
}

// NewUpstreamError reports a failed call to a remote service without its raw cause
func NewUpstreamError(service string) *APIError {
	return newAPIError(ErrCodeUpstream, http.StatusBadGateway, "Remote service request failed").
		WithDetail("service", service)
}
