package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/model"
)

func TestHTTPStore_InsertAndSelect(t *testing.T) {
	var inserted model.VehicleRecord

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/vehicles":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&inserted))
			assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/vehicles":
			_ = json.NewEncoder(w).Encode([]model.VehicleRecord{inserted})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.Client(), srv.URL, "secret")
	ctx := context.Background()

	rec := model.VehicleRecord{ID: "v-1", Status: model.StatusAtQC1, VehicleNumber: "MH12AB1234"}
	require.NoError(t, store.Insert(ctx, rec))

	recs, err := store.SelectAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "v-1", recs[0].ID)
	assert.Equal(t, model.StatusAtQC1, recs[0].Status)
}

func TestHTTPStore_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, common.ErrNotFound},
		{"conflict", http.StatusConflict, common.ErrAlreadyExists},
		{"validation", http.StatusUnprocessableEntity, common.ErrValidationRejected},
		{"server error", http.StatusInternalServerError, common.ErrRemoteUnavailable},
		{"bad gateway", http.StatusBadGateway, common.ErrRemoteUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": tt.name})
			}))
			defer srv.Close()

			store := NewHTTPStore(srv.Client(), srv.URL, "")
			err := store.Update(context.Background(), model.VehicleRecord{ID: "v-1"})
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHTTPStore_ConnectionRefusedIsUnavailable(t *testing.T) {
	// Reserve a port and close it so nothing is listening.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	store := NewHTTPStore(nil, addr, "")
	err := store.Ping(context.Background())
	require.ErrorIs(t, err, common.ErrRemoteUnavailable)
}

func TestHTTPStore_Watch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/vehicles/feed", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		fl := w.(http.Flusher)

		fmt.Fprint(w, ": keepalive\n\n")
		fmt.Fprint(w, `data: {"kind":"INSERT","record":{"id":"v-9","status":"AT_QC_1","vehicle_number":"KA05MN7712"}}`+"\n\n")
		fmt.Fprint(w, `data: {"kind":"DELETE","record":{"id":"v-9"}}`+"\n\n")
		fl.Flush()
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.Client(), srv.URL, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := store.Watch(ctx)
	require.NoError(t, err)

	ev := <-ch
	assert.Equal(t, model.ChangeInsert, ev.Kind)
	assert.Equal(t, "v-9", ev.Record.ID)

	ev = <-ch
	assert.Equal(t, model.ChangeDelete, ev.Kind)

	// Server closed the stream, channel must close.
	_, open := <-ch
	assert.False(t, open)
}
