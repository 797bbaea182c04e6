package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// routes builds the HTTP router with all middleware and endpoints.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/ping", s.handlePing)

		r.Get("/racks", s.handleListRacks)

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Post("/", s.handleCreateDevice)
			r.Delete("/{id}", s.handleDeleteDevice)
		})

		r.Get("/logs", s.handleListLogs)
		r.Get("/export", s.handleExport)
	})

	wsPath := s.cfgWS.Path
	if wsPath == "" {
		wsPath = "/ws"
	}
	r.Get(wsPath, s.handleWebSocket)

	return r
}
