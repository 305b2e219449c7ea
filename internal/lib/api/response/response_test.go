package response

import (
	"encoding/json"
	"strings"
	"testing"

	apierrors "parcelsync/internal/lib/errors"
)

func TestOk(t *testing.T) {
	resp := Ok(map[string]string{"barcode": "BC123"})

	if !resp.Success {
		t.Error("Ok() Success should be true")
	}
	if resp.StatusMessage != "Success" {
		t.Errorf("Ok() StatusMessage = %v, want Success", resp.StatusMessage)
	}
	if resp.Data == nil {
		t.Error("Ok() Data should not be nil")
	}
	if resp.Timestamp == "" {
		t.Error("Ok() Timestamp should not be empty")
	}
	if resp.Error != nil {
		t.Error("Ok() Error should be nil")
	}
}

func TestOkWithMessage(t *testing.T) {
	resp := OkWithMessage(nil, "Parcel created")
	if !resp.Success || resp.StatusMessage != "Parcel created" {
		t.Errorf("OkWithMessage() = %+v", resp)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		resp    Response
		message string
		code    string
	}{
		{"plain", Error("Requested resource not found"), "Requested resource not found", ""},
		{"with data", ErrorWithData(map[string]string{"status": "failed"}, "Parcel not created"), "Parcel not created", ""},
		{"api error", ErrorFromAPIError(apierrors.NewNotFoundError("Order")), "Order not found", string(apierrors.ErrCodeNotFound)},
		{"upstream", ErrorFromAPIError(apierrors.NewUpstreamError("massar")), "Remote service request failed", string(apierrors.ErrCodeUpstream)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.resp.Success {
				t.Error("Success should be false")
			}
			if tt.resp.StatusMessage != tt.message {
				t.Errorf("StatusMessage = %q, want %q", tt.resp.StatusMessage, tt.message)
			}
			if tt.code == "" {
				if tt.resp.Error != nil {
					t.Errorf("Error = %+v, want nil", tt.resp.Error)
				}
				return
			}
			if tt.resp.Error == nil || tt.resp.Error.Code != tt.code {
				t.Errorf("Error = %+v, want code %q", tt.resp.Error, tt.code)
			}
		})
	}
}

func TestWithRequestID(t *testing.T) {
	resp := Ok(nil).WithRequestID("req-1")

	body, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"request_id":"req-1"`) {
		t.Errorf("request_id missing in %s", body)
	}
	if strings.Contains(string(body), `"data"`) {
		t.Errorf("empty data should be omitted in %s", body)
	}
}
