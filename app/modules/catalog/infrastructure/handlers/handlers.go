package cataloghandlers

import (
	"log/slog"
	"net/http"

	catalogservice "github.com/Black-And-White-Club/racepack/app/modules/catalog/application"
	"github.com/Black-And-White-Club/racepack/app/shared/httpx"
	"github.com/go-chi/chi/v5"
)

// CatalogHandlers serves categories and jerseys over HTTP.
type CatalogHandlers struct {
	service catalogservice.Service
	logger  *slog.Logger
}

func NewCatalogHandlers(service catalogservice.Service, logger *slog.Logger) *CatalogHandlers {
	return &CatalogHandlers{service: service, logger: logger}
}

// Mount registers the public and admin routes.
func (h *CatalogHandlers) Mount(public, admin chi.Router) {
	public.Get("/categories", h.HandleListCategories)
	public.Get("/jerseys", h.HandleListJerseys)
	admin.Put("/categories", h.HandleUpsertCategory)
	admin.Get("/categories/capacity.png", h.HandleCapacityChart)
}

func (h *CatalogHandlers) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandlers) HandleListJerseys(w http.ResponseWriter, r *http.Request) {
	jerseys, err := h.service.ListJerseys(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, jerseys)
}

func (h *CatalogHandlers) HandleUpsertCategory(w http.ResponseWriter, r *http.Request) {
	var req catalogservice.Category
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	stored, err := h.service.UpsertCategory(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stored)
}

func (h *CatalogHandlers) HandleCapacityChart(w http.ResponseWriter, r *http.Request) {
	png, err := h.service.RenderCapacityChart(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}
