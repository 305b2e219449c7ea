package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"parcelsync/entity"
	"parcelsync/internal/database"
	"parcelsync/internal/services"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEndToEnd(t *testing.T, handler http.Handler, timeout time.Duration) (*Core, *database.SQLClient, *fakeStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	conf := testConfig()
	conf.Massar.ApiUrl = server.URL
	conf.Massar.Timeout = timeout
	conf.SQL.Driver = database.DriverSQLite
	conf.SQL.Path = ":memory:"

	db, err := database.NewSQLClient(context.Background(), conf, discardLogger())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	massar := services.NewMassarService(conf, discardLogger())
	massar.SetLimiter(services.Unlimited())

	store := newFakeStore(testOrder())

	c := New(discardLogger(), conf)
	c.SetRepository(db)
	c.SetDeliveryService(massar)
	c.SetOrderStore(store)
	return c, db, store
}

func pendingEvent() *entity.StatusEvent {
	return &entity.StatusEvent{OrderId: 42, OldStatus: "processing", NewStatus: "pending"}
}

func TestEndToEnd_ParcelCreated(t *testing.T) {
	c, db, store := newEndToEnd(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code_barre": "BC123", "pck_code": "PCK1"}`))
	}), time.Second)

	result, acted := c.HandleStatusChange(context.Background(), pendingEvent())
	require.True(t, acted)
	assert.Equal(t, entity.ParcelCreated, result.Status)

	record, err := db.GetParcel(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "WC-42", record.Reference)
	assert.Equal(t, "BC123", record.Barcode)
	assert.Equal(t, "PCK1", record.PackageCode)

	require.Len(t, store.notes[42], 1)
	assert.Contains(t, store.notes[42][0], "BC123")
	assert.Contains(t, store.notes[42][0], "PCK1")
	assert.Contains(t, store.notes[42][0], "WC-42")

	// a second flip back to pending is a guarded no-op
	result, acted = c.HandleStatusChange(context.Background(), pendingEvent())
	require.True(t, acted)
	assert.Equal(t, entity.ParcelExists, result.Status)
	assert.Len(t, store.notes[42], 1)
}

func TestEndToEnd_Timeout(t *testing.T) {
	release := make(chan struct{})
	c, db, store := newEndToEnd(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}), 50*time.Millisecond)
	defer close(release)

	result, acted := c.HandleStatusChange(context.Background(), pendingEvent())
	require.True(t, acted)
	assert.Equal(t, entity.ParcelFailed, result.Status)

	exists, err := db.ParcelExists(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, exists)

	require.Len(t, store.notes[42], 1)
	assert.True(t, strings.HasPrefix(store.notes[42][0], "Failed to create Massar parcel"))
}

func TestEndToEnd_ErrorBodyIsFailure(t *testing.T) {
	c, db, store := newEndToEnd(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "bad credentials"}`))
	}), time.Second)

	result, err := c.CreateParcelManually(context.Background(), 42)
	assert.ErrorIs(t, err, entity.ErrParcelNotCreated)
	assert.Equal(t, entity.ParcelFailed, result.Status)

	record, err := db.GetParcel(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Equal(t, []string{noteFailed}, store.notes[42])
}
