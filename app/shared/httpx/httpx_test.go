package httpx

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"name":"ana"}`},
		{name: "unknown field", body: `{"name":"ana","admin":true}`, wantErr: true},
		{name: "trailing data", body: `{"name":"ana"}{"name":"bo"}`, wantErr: true},
		{name: "malformed", body: `{"name":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSON(req, &p)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ana", p.Name)
		})
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		wantBody   string
	}{
		{"conflict", fmt.Errorf("%w: 7 left", apperr.ErrInsufficientScanBudget), http.StatusConflict, "insufficient_scan_budget", "insufficient scan budget: 7 left"},
		{"internal detail hidden", fmt.Errorf("pq: relation missing"), http.StatusInternalServerError, "internal", "internal error"},
		{"aborted", apperr.ErrTransactionAborted, http.StatusServiceUnavailable, "transaction_aborted", "transaction aborted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			WriteError(rec, req, slog.Default(), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body ErrorBody
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantKind, body.Kind)
			assert.Equal(t, tt.wantBody, body.Error)
		})
	}
}

func TestWriteError_RetryAfterOnAbort(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodPost, "/", nil), slog.Default(), apperr.ErrTransactionAborted)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestIDParam(t *testing.T) {
	r := chi.NewRouter()
	var got int64
	var gotErr error
	r.Get("/things/{id}", func(w http.ResponseWriter, req *http.Request) {
		got, gotErr = IDParam(req, "id")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/12", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, int64(12), got)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/abc", nil))
	assert.ErrorIs(t, gotErr, apperr.ErrValidation)
}
