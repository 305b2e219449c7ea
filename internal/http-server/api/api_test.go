package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"parcelsync/entity"
	"parcelsync/internal/config"
	"parcelsync/internal/lib/region"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken       = "operator-key"
	unrecordedOrder = 11
)

type fakeHandler struct {
	events []*entity.StatusEvent
	manual map[int64]error
	record *entity.ParcelRecord
}

func (h *fakeHandler) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if token != testToken {
		return nil, errors.New("invalid token")
	}
	return &entity.UserAuth{Name: "operator"}, nil
}

func (h *fakeHandler) CreateParcelManually(_ context.Context, orderId int64) (*entity.ParcelResult, error) {
	if orderId == unrecordedOrder {
		return &entity.ParcelResult{OrderId: orderId, Status: entity.ParcelUnrecorded, Barcode: "BC123"}, nil
	}
	if err, ok := h.manual[orderId]; ok {
		return &entity.ParcelResult{OrderId: orderId, Status: entity.ParcelFailed}, err
	}
	return &entity.ParcelResult{OrderId: orderId, Status: entity.ParcelCreated, Barcode: "BC123"}, nil
}

func (h *fakeHandler) GetParcel(_ context.Context, orderId int64) (*entity.ParcelRecord, error) {
	if h.record != nil && h.record.OrderId == orderId {
		return h.record, nil
	}
	return nil, nil
}

func (h *fakeHandler) TestConnection(_ context.Context, login, _ string) *entity.ConnectionTest {
	if login == "shop" {
		return &entity.ConnectionTest{Success: true, Message: "API connection successful. Test parcel created with barcode: TB1"}
	}
	return &entity.ConnectionTest{Success: false, Message: "API connection failed. Please check your credentials and try again."}
}

func (h *fakeHandler) HandleStatusChange(_ context.Context, event *entity.StatusEvent) (*entity.ParcelResult, bool) {
	h.events = append(h.events, event)
	if !event.MovedToPending() {
		return nil, false
	}
	return &entity.ParcelResult{OrderId: event.OrderId, Status: entity.ParcelCreated}, true
}

func (h *fakeHandler) Regions() []entity.Region {
	return region.All()
}

type apiResponse struct {
	Success       bool            `json:"success"`
	StatusMessage string          `json:"status_message"`
	Data          json.RawMessage `json:"data"`
	RequestID     string          `json:"request_id"`
	Error         *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestRouter(h *fakeHandler) http.Handler {
	conf := &config.Config{}
	conf.Listen.Timeout = 5
	return NewRouter(conf, slog.New(slog.NewTextHandler(io.Discard, nil)), h)
}

func do(t *testing.T, router http.Handler, method, path, body string, auth bool) (int, apiResponse) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if auth {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func TestRoutes_RequireToken(t *testing.T) {
	router := newTestRouter(&fakeHandler{})

	code, resp := do(t, router, http.MethodGet, "/parcels/regions", "", false)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, resp.Success)
}

func TestWebhookStatus(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		code    int
		message string
	}{
		{
			name:    "moved to pending",
			body:    `{"data":{"order_id":42,"old_status":"processing","new_status":"pending"}}`,
			code:    http.StatusOK,
			message: "Status change processed",
		},
		{
			name:    "other transition",
			body:    `{"data":{"order_id":42,"old_status":"pending","new_status":"processing"}}`,
			code:    http.StatusOK,
			message: "Status change ignored",
		},
		{
			name: "missing order id",
			body: `{"data":{"new_status":"pending"}}`,
			code: http.StatusBadRequest,
		},
		{
			name: "missing status",
			body: `{"data":{"order_id":42}}`,
			code: http.StatusBadRequest,
		},
		{
			name: "embedded order with other id",
			body: `{"data":{"order_id":42,"new_status":"pending","order":{"id":43}}}`,
			code: http.StatusBadRequest,
		},
		{
			name: "empty body",
			body: ``,
			code: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &fakeHandler{}
			code, resp := do(t, newTestRouter(h), http.MethodPost, "/parcels/webhook/status", tt.body, true)
			assert.Equal(t, tt.code, code)
			if tt.code == http.StatusOK {
				assert.True(t, resp.Success)
				assert.Equal(t, tt.message, resp.StatusMessage)
				assert.Len(t, h.events, 1)
			} else {
				assert.Empty(t, h.events)
			}
		})
	}
}

func TestManualCreate(t *testing.T) {
	h := &fakeHandler{manual: map[int64]error{
		7: entity.ErrOrderNotFound,
		8: entity.ErrParcelNotCreated,
		9: entity.ErrNoOrderStore,
	}}
	router := newTestRouter(h)

	tests := []struct {
		path    string
		code    int
		errCode string
		message string
	}{
		{"/parcels/orders/42", http.StatusOK, "", "Parcel created successfully"},
		{"/parcels/orders/11", http.StatusOK, "", "Parcel created but not recorded locally; do not retry"},
		{"/parcels/orders/7", http.StatusNotFound, "NOT_FOUND", ""},
		{"/parcels/orders/8", http.StatusBadGateway, "UPSTREAM_ERROR", ""},
		{"/parcels/orders/9", http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", ""},
		{"/parcels/orders/abc", http.StatusBadRequest, "BAD_REQUEST", ""},
		{"/parcels/orders/-1", http.StatusBadRequest, "BAD_REQUEST", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, resp := do(t, router, http.MethodPost, tt.path, "", true)
			assert.Equal(t, tt.code, code)
			if tt.errCode == "" {
				assert.True(t, resp.Success)
				assert.Equal(t, tt.message, resp.StatusMessage)
				return
			}
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.errCode, resp.Error.Code)
		})
	}
}

func TestParcelInfo(t *testing.T) {
	h := &fakeHandler{record: &entity.ParcelRecord{OrderId: 42, Reference: "WC-42", Barcode: "BC123", PackageCode: "PCK1"}}
	router := newTestRouter(h)

	code, resp := do(t, router, http.MethodGet, "/parcels/orders/42", "", true)
	require.Equal(t, http.StatusOK, code)
	var record entity.ParcelRecord
	require.NoError(t, json.Unmarshal(resp.Data, &record))
	assert.Equal(t, "BC123", record.Barcode)
	assert.Equal(t, "WC-42", record.Reference)

	code, resp = do(t, router, http.MethodGet, "/parcels/orders/43", "", true)
	assert.Equal(t, http.StatusNotFound, code)
	assert.NotEmpty(t, resp.RequestID)
}

func TestTestConnection(t *testing.T) {
	router := newTestRouter(&fakeHandler{})

	code, resp := do(t, router, http.MethodPost, "/parcels/test", `{"data":{"login":"shop","password":"secret"}}`, true)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.StatusMessage, "TB1")

	code, resp = do(t, router, http.MethodPost, "/parcels/test", `{"data":{"login":"other","password":"secret"}}`, true)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.False(t, resp.Success)

	code, resp = do(t, router, http.MethodPost, "/parcels/test", `{"data":{"login":"shop"}}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Please provide both login and password.", resp.StatusMessage)
}

func TestRegions(t *testing.T) {
	code, resp := do(t, newTestRouter(&fakeHandler{}), http.MethodGet, "/parcels/regions", "", true)
	require.Equal(t, http.StatusOK, code)

	var regions []entity.Region
	require.NoError(t, json.Unmarshal(resp.Data, &regions))
	assert.Len(t, regions, 24)
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(&fakeHandler{})

	code, _ := do(t, router, http.MethodGet, "/parcels/unknown", "", true)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, router, http.MethodDelete, "/parcels/regions", "", true)
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}
