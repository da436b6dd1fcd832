/*
server.go - HTTP router and middleware configuration

PURPOSE:

	Configures the HTTP router (chi), middleware stack, and route definitions.
	This is the wiring layer that connects URLs to handlers.

ROUTER: chi

	Chi was chosen for:
	- Lightweight and fast
	- Context-based
	- Middleware support
	- RESTful route patterns

MIDDLEWARE STACK:
 1. Logger:     Request logging
 2. Recoverer:  Panic recovery (500 instead of crash)
 3. RequestID:  Unique ID per request for tracing
 4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:

	/api/groups/*       Asset group reference data
	/api/assets/*       Register, events and per-asset history
	/api/accruals/*     Monthly accrual runs
	/api/reports/*      Read projections

SECURITY NOTE:

	No authentication middleware currently. All endpoints are public.

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
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Actor"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Asset group reference data
		r.Route("/groups", func(r chi.Router) {
			r.Get("/", h.ListGroups)
			r.Post("/", h.CreateGroup)
		})

		// Asset register and events
		r.Route("/assets", func(r chi.Router) {
			r.Get("/", h.ListAssets)
			r.Post("/", h.RegisterAsset)
			r.Get("/{id}", h.GetAsset)
			r.Get("/{id}/records", h.GetAssetRecords)
			r.Get("/{id}/entries", h.GetAssetEntries)
			r.Get("/{id}/history", h.GetAssetHistory)
			r.Get("/{id}/audit", h.GetAssetAudit)

			r.Post("/{id}/accrue", h.Accrue)
			r.Post("/{id}/revalue", h.Revalue)
			r.Post("/{id}/improve", h.Improve)
			r.Post("/{id}/transfer", h.Transfer)
			r.Post("/{id}/dispose", h.Dispose)
			r.Post("/{id}/conserve", h.Conserve)
			r.Post("/{id}/reactivate", h.Reactivate)
		})

		// Monthly accrual runs
		r.Route("/accruals", func(r chi.Router) {
			r.Post("/run", h.RunAccrual)
		})

		// Read projections
		r.Route("/reports", func(r chi.Router) {
			r.Get("/depreciation", h.DepreciationSummary)
			r.Get("/journal", h.Journal)
			r.Get("/statistics", h.Statistics)
			r.Get("/wear", h.WearReport)
		})
	})

	return r
}
