package registrationhandlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"regexp"
	"strconv"
	"strings"

	registrationservice "github.com/Black-And-White-Club/racepack/app/modules/registration/application"
	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
	"github.com/Black-And-White-Club/racepack/app/shared/httpx"
	"github.com/Black-And-White-Club/racepack/app/shared/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxUploadBytes caps the multipart payment form, files included.
const maxUploadBytes = 10 << 20

var extStrip = regexp.MustCompile(`[^a-zA-Z0-9]`)

// RegistrationHandlers serves registration, payment submission and review.
type RegistrationHandlers struct {
	service registrationservice.Service
	blobs   storage.BlobStore
	logger  *slog.Logger
	newID   func() uuid.UUID
}

func NewRegistrationHandlers(service registrationservice.Service, blobs storage.BlobStore, logger *slog.Logger) *RegistrationHandlers {
	return &RegistrationHandlers{service: service, blobs: blobs, logger: logger, newID: uuid.New}
}

// Mount registers the public and admin routes.
func (h *RegistrationHandlers) Mount(public, admin chi.Router) {
	public.Post("/registrations", h.HandleCreateRegistration)
	public.Post("/payments", h.HandleSubmitPayment)

	admin.Get("/registrations/{id}", h.HandleGetRegistration)
	admin.Post("/registrations/{id}/confirm", h.HandleConfirmPayment)
	admin.Post("/registrations/{id}/decline", h.HandleDeclinePayment)
	admin.Get("/payments/{id}/proof", h.HandlePaymentProof)
}

func (h *RegistrationHandlers) HandleCreateRegistration(w http.ResponseWriter, r *http.Request) {
	var req registrationservice.CreateRegistrationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	res, err := h.service.CreateRegistration(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

// HandleSubmitPayment accepts multipart/form-data with a required "proof"
// file, and either "registrationId" or a "registration" JSON document. An
// "idCardPhoto" file is only accepted with a new registration. "amount" is
// optional.
func (h *RegistrationHandlers) HandleSubmitPayment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.WriteError(w, r, h.logger, apperr.Validationf("invalid multipart form: %v", err))
		return
	}

	req, err := paymentRequestFromForm(r)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	if req.NewRegistration == nil && len(r.MultipartForm.File["idCardPhoto"]) > 0 {
		httpx.WriteError(w, r, h.logger, apperr.Validationf("idCardPhoto is only accepted with a new registration"))
		return
	}

	txnKey := h.newID().String()
	proofRef, err := h.storeUpload(r, "proof", "proofs/"+txnKey)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	if proofRef == nil {
		httpx.WriteError(w, r, h.logger, apperr.Validationf("proof file is required"))
		return
	}
	req.ProofRef = *proofRef

	if req.NewRegistration != nil {
		idRef, err := h.storeUpload(r, "idCardPhoto", "id-cards/"+txnKey)
		if err != nil {
			httpx.WriteError(w, r, h.logger, err)
			return
		}
		req.NewRegistration.User.IDCardPhotoRef = idRef
	}

	res, err := h.service.SubmitPayment(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func paymentRequestFromForm(r *http.Request) (registrationservice.SubmitPaymentRequest, error) {
	var req registrationservice.SubmitPaymentRequest
	if raw := strings.TrimSpace(r.FormValue("registrationId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			return req, apperr.Validationf("invalid registrationId %q", raw)
		}
		req.RegistrationID = id
	}
	if raw := strings.TrimSpace(r.FormValue("amount")); raw != "" {
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return req, apperr.Validationf("amount must be an integer in minor units, got %q", raw)
		}
		req.Amount = amount
	}
	if raw := strings.TrimSpace(r.FormValue("registration")); raw != "" {
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.DisallowUnknownFields()
		var reg registrationservice.CreateRegistrationRequest
		if err := dec.Decode(&reg); err != nil {
			return req, apperr.Validationf("invalid registration document: %v", err)
		}
		req.NewRegistration = &reg
	}
	return req, nil
}

// storeUpload saves a form file under keyPrefix plus its sanitized extension.
// It returns nil when the field is absent.
func (h *RegistrationHandlers) storeUpload(r *http.Request, field, keyPrefix string) (*string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Validationf("invalid %s upload: %v", field, err)
	}
	defer file.Close()

	ext := extStrip.ReplaceAllString(strings.TrimPrefix(path.Ext(header.Filename), "."), "")
	if ext == "" {
		ext = "bin"
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ref, err := h.put(r.Context(), keyPrefix+"."+strings.ToLower(ext), contentType, file)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (h *RegistrationHandlers) put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if h.blobs == nil {
		return "", fmt.Errorf("%w: no blob store configured", apperr.ErrExternalService)
	}
	ref, err := h.blobs.Put(ctx, key, contentType, body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrExternalService, err)
	}
	return ref, nil
}

func (h *RegistrationHandlers) HandleGetRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	view, err := h.service.GetRegistration(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *RegistrationHandlers) HandleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	view, err := h.service.ConfirmPayment(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

type declineRequest struct {
	Reason string `json:"reason"`
}

// HandleDeclinePayment accepts an optional {"reason": "..."} body.
func (h *RegistrationHandlers) HandleDeclinePayment(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	var req declineRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, h.logger, err)
			return
		}
	}
	view, err := h.service.DeclinePayment(r.Context(), id, req.Reason)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *RegistrationHandlers) HandlePaymentProof(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	link, err := h.service.GetPaymentProof(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	http.Redirect(w, r, link, http.StatusFound)
}
