package api

import "net/http"

// handleListRacks returns all racks ordered by room position.
func (s *Server) handleListRacks(w http.ResponseWriter, r *http.Request) {
	racks, err := s.inventory.ListRacks(r.Context())
	if err != nil {
		s.logger.Error("failed to list racks", "error", err)
		writeStorageError(w)
		return
	}
	writeOK(w, racks)
}
