package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/simdash/internal/panel"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/buildings", func(r chi.Router) {
			r.Get("/", s.handleListBuildings)
			r.Post("/", s.handleCreateBuilding)

			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", s.handleDeleteBuilding)
				r.Get("/devices", s.handleListDevices)
				r.Get("/scene", s.handleGetScene)
			})
		})

		r.Route("/simulation", func(r chi.Router) {
			r.Get("/", s.handleGetSimulation)
			r.Post("/start", s.handleStartSimulation)
			r.Post("/stop", s.handleStopSimulation)
		})

		r.Get("/telemetry", s.handleGetTelemetry)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleListNotifications)
			r.Delete("/{id}", s.handleDismissNotification)
		})

		r.Get("/ws", s.handleWebSocket)

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeNotFound(w, "route not found")
		})
	})

	// Dashboard page (embedded via go:embed)
	r.Handle("/*", panel.Handler(s.cfg.PanelDir))

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
