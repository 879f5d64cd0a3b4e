package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured. Static dashboard
// files are served from root for every path outside /api.
func NewRouter(h *Handler, root string) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(NoCache)
		r.Get("/health", h.Health)
		r.Get("/snapshot", h.Snapshot)
		r.Post("/snapshot", h.Regenerate)
		r.Get("/snapshot/url", h.SnapshotURL)
	})

	r.Get("/*", staticHandler(root))

	return r
}
