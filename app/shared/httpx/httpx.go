// Package httpx holds the JSON request and response helpers shared by the
// module handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
	"github.com/Black-And-White-Club/racepack/app/shared/observability/attr"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err onto a status code and an ErrorBody. Internal errors are
// logged and their detail is withheld from the client.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := apperr.HTTPStatus(err)
	body := ErrorBody{Error: err.Error(), Kind: apperr.Kind(err)}

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed",
			attr.ExtractCorrelationID(r.Context()),
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
		if status == http.StatusInternalServerError {
			body.Error = "internal error"
		}
		if errors.Is(err, apperr.ErrTransactionAborted) {
			w.Header().Set("Retry-After", "1")
		}
	}
	WriteJSON(w, status, body)
}

// DecodeJSON strictly decodes the request body into v. Unknown fields,
// trailing data and oversized bodies are validation errors.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Validationf("invalid request body: %v", err)
	}
	if dec.More() {
		return apperr.Validationf("invalid request body: unexpected trailing data")
	}
	return nil
}

// IDParam parses a positive integer URL parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.Validationf("invalid %s %q", name, raw)
	}
	return id, nil
}

// Attachment sets headers for a downloadable file.
func Attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
