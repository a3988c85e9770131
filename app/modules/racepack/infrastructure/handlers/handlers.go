package racepackhandlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	racepackservice "github.com/Black-And-White-Club/racepack/app/modules/racepack/application"
	"github.com/Black-And-White-Club/racepack/app/shared/httpx"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RacePackHandlers serves the race-pack desk.
type RacePackHandlers struct {
	service racepackservice.Service
	logger  *slog.Logger
	// claimMiddleware wraps only the public claim route (rate limiting).
	claimMiddleware []func(http.Handler) http.Handler
}

func NewRacePackHandlers(service racepackservice.Service, logger *slog.Logger, claimMiddleware ...func(http.Handler) http.Handler) *RacePackHandlers {
	return &RacePackHandlers{service: service, logger: logger, claimMiddleware: claimMiddleware}
}

// Mount registers the public and admin routes.
func (h *RacePackHandlers) Mount(public, admin chi.Router) {
	public.With(h.claimMiddleware...).Post("/racepack/claim", h.HandleClaim)
	public.Get("/racepack/{code}", h.HandleGetQrCode)
	admin.Get("/racepack/claims.xlsx", h.HandleExportClaims)
}

func (h *RacePackHandlers) HandleClaim(w http.ResponseWriter, r *http.Request) {
	var req racepackservice.ClaimRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	res, err := h.service.Claim(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *RacePackHandlers) HandleGetQrCode(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.GetQrCodeState(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, state)
}

func (h *RacePackHandlers) HandleExportClaims(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ExportClaimsReport(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.Attachment(w, xlsxContentType, fmt.Sprintf("race-pack-claims-%s.xlsx", time.Now().UTC().Format("20060102")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
