package app

import (
	"net/http"
	"strings"

	"github.com/Black-And-White-Club/racepack/app/shared/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouteMounter is implemented by every module's handlers. public is mounted
// under /api and admin under /api/admin behind the admin token check.
type RouteMounter interface {
	Mount(public, admin chi.Router)
}

// Router builds the HTTP API.
func (app *App) Router() http.Handler {
	m := app.Modules

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(m.Auth.CORS())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if app.Config.Storage.Driver != "s3" && strings.HasPrefix(app.Config.Storage.DiskBaseURL, "/") {
		prefix := strings.TrimSuffix(app.Config.Storage.DiskBaseURL, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", http.FileServer(http.Dir(app.Config.Storage.DiskRoot))))
	}

	MountRoutes(r, m.Auth.RequireAdmin(),
		m.Catalog.Handlers,
		m.Registration.Handlers,
		m.RacePack.Handlers,
		m.Auth.Handlers,
	)
	return r
}

// MountRoutes registers each module's routes under /api.
func MountRoutes(r chi.Router, requireAdmin func(http.Handler) http.Handler, mounters ...RouteMounter) {
	r.Route("/api", func(api chi.Router) {
		api.Route("/admin", func(admin chi.Router) {
			admin.Use(requireAdmin)
			for _, m := range mounters {
				m.Mount(api, admin)
			}
		})
	})
}
