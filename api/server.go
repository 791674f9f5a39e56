/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for API clients

ROUTE GROUPS:
  /                     Contract form (GET) and download (POST)
  /api/tariffs          Active catalog
  /api/schedule         Schedule preview
  /api/catalogs/*       Catalog management (needs a store)

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", GenerationIDHeader},
		AllowCredentials: false,
	}))

	// Form
	r.Get("/", h.ShowForm)
	r.Post("/", h.SubmitForm)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/tariffs", h.ListTariffs)
		r.Post("/schedule", h.PreviewSchedule)

		// Catalog routes
		r.Route("/catalogs", func(r chi.Router) {
			r.Get("/", h.ListCatalogs)
			r.Get("/{name}", h.GetCatalog)
			r.Put("/{name}", h.PutCatalog)
			r.Delete("/{name}", h.DeleteCatalog)
			r.Post("/{name}/activate", h.ActivateCatalog)
		})
	})

	return r
}
