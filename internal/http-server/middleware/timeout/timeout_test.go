package timeout

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTimeout(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		handler http.HandlerFunc
		want    int
		body    bool
	}{
		{
			name:    "fast handler",
			seconds: 1,
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
			},
			want: http.StatusCreated,
		},
		{
			name:    "handler gives up on deadline",
			seconds: 1,
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(5 * time.Second):
					w.WriteHeader(http.StatusOK)
				}
			},
			want: http.StatusGatewayTimeout,
			body: true,
		},
		{
			name:    "late handler keeps its own response",
			seconds: 1,
			handler: func(w http.ResponseWriter, r *http.Request) {
				<-r.Context().Done()
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			want: http.StatusServiceUnavailable,
		},
		{
			name:    "disabled",
			seconds: 0,
			handler: func(w http.ResponseWriter, r *http.Request) {
				if _, ok := r.Context().Deadline(); ok {
					t.Error("deadline set while disabled")
				}
				w.WriteHeader(http.StatusOK)
			},
			want: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/parcels/orders/42", nil)

			Timeout(tt.seconds)(tt.handler).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("Status = %d, want %d", rec.Code, tt.want)
			}
			if !tt.body {
				return
			}
			var resp struct {
				Success bool `json:"success"`
				Error   struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("body %q: %v", rec.Body.String(), err)
			}
			if resp.Success || resp.Error.Code != "TIMEOUT" {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}
