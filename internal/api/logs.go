package api

import (
	"net/http"
	"strconv"
)

// handleListLogs returns operation log entries, newest first. Limit and
// offset come from query parameters; the repository clamps them to its
// own bounds.
func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	result, err := s.audit.List(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("failed to list operation log", "error", err)
		writeStorageError(w)
		return
	}
	writeOK(w, result.Entries)
}
