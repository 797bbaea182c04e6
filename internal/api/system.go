package api

import (
	"net/http"
	"time"
)

// handleHealth reports liveness of the server and its database.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.HealthCheck(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, ErrCodeStorage, "database unreachable", nil)
		return
	}

	writeOK(w, map[string]any{
		"status":     "healthy",
		"database":   "up",
		"ws_clients": s.hub.ClientCount(),
	})
}

// handlePing measures round-trip latency through the API and the
// database, returning both along with the database clock.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	apiStart := time.Now()

	dbStart := time.Now()
	var dbTime string
	if err := s.db.QueryRowContext(r.Context(), "SELECT datetime('now')").Scan(&dbTime); err != nil {
		s.logger.Error("ping query failed", "error", err)
		writeStorageError(w)
		return
	}
	dbMS := float64(time.Since(dbStart).Microseconds()) / 1000

	writeOK(w, map[string]any{
		"api_ms":  float64(time.Since(apiStart).Microseconds()) / 1000,
		"db_ms":   dbMS,
		"db_time": dbTime,
	})
}
