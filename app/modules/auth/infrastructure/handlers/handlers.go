package authhandlers

import (
	"errors"
	"log/slog"
	"net/http"

	authservice "github.com/Black-And-White-Club/racepack/app/modules/auth/application"
	"github.com/Black-And-White-Club/racepack/app/shared/httpx"
	"github.com/go-chi/chi/v5"
)

// AuthHandlers serves admin login.
type AuthHandlers struct {
	service authservice.Service
	logger  *slog.Logger
	// sessionMiddleware wraps only the login route (rate limiting).
	sessionMiddleware []func(http.Handler) http.Handler
}

func NewAuthHandlers(service authservice.Service, logger *slog.Logger, sessionMiddleware ...func(http.Handler) http.Handler) *AuthHandlers {
	return &AuthHandlers{service: service, logger: logger, sessionMiddleware: sessionMiddleware}
}

type sessionRequest struct {
	AccessCode string `json:"accessCode"`
}

// Mount registers the login route. Auth has no admin routes of its own.
func (h *AuthHandlers) Mount(public, _ chi.Router) {
	public.With(h.sessionMiddleware...).Post("/auth/session", h.HandleCreateSession)
}

// HandleCreateSession exchanges an access code for a bearer token.
func (h *AuthHandlers) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	session, err := h.service.CreateSession(r.Context(), req.AccessCode)
	if errors.Is(err, authservice.ErrInvalidCredentials) {
		writeUnauthorized(w, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, session)
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="racepack"`)
	httpx.WriteJSON(w, http.StatusUnauthorized, httpx.ErrorBody{Error: msg, Kind: "unauthorized"})
}
