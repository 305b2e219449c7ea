package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		code   ErrorCode
		status int
	}{
		{"validation", NewValidationError("Invalid status event"), ErrCodeValidation, http.StatusBadRequest},
		{"bad request", NewBadRequestError("Invalid order ID format"), ErrCodeBadRequest, http.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError("Unauthorized: bearer token not found"), ErrCodeUnauthorized, http.StatusUnauthorized},
		{"not found", NewNotFoundError("Order"), ErrCodeNotFound, http.StatusNotFound},
		{"not found with id", NewNotFoundErrorWithID("Parcel", "42"), ErrCodeNotFound, http.StatusNotFound},
		{"database", NewDatabaseError("GetParcel"), ErrCodeDatabaseError, http.StatusInternalServerError},
		{"internal", NewInternalError(""), ErrCodeInternalError, http.StatusInternalServerError},
		{"unavailable", NewServiceUnavailableError("shop"), ErrCodeServiceUnavail, http.StatusServiceUnavailable},
		{"timeout", NewTimeoutError("/parcels/orders/42"), ErrCodeTimeout, http.StatusGatewayTimeout},
		{"upstream", NewUpstreamError("massar"), ErrCodeUpstream, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			if tt.err.HTTPStatus != tt.status {
				t.Errorf("HTTPStatus = %v, want %v", tt.err.HTTPStatus, tt.status)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestDetails(t *testing.T) {
	notFound := NewNotFoundErrorWithID("Parcel", "42")
	if notFound.Message != "Parcel not found" {
		t.Errorf("Message = %q", notFound.Message)
	}
	if notFound.Details["resource"] != "Parcel" || notFound.Details["id"] != "42" {
		t.Errorf("Details = %v", notFound.Details)
	}

	upstream := NewUpstreamError("massar")
	if upstream.Details["service"] != "massar" {
		t.Errorf("Details = %v", upstream.Details)
	}
	if got := NewInternalError("Parcel lookup failed").Message; got != "Parcel lookup failed" {
		t.Errorf("Message = %q", got)
	}
}

func TestErrorString(t *testing.T) {
	if got := NewBadRequestError("Empty request body").Error(); got != "BAD_REQUEST: Empty request body" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := fmt.Errorf("handler: %w", NewServiceUnavailableError("shop"))
	var apiErr *APIError
	if !errors.As(wrapped, &apiErr) || apiErr.Code != ErrCodeServiceUnavail {
		t.Errorf("errors.As() = %v", apiErr)
	}
}
