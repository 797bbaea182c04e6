package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/rackview-core/internal/inventory"
)

// handleListDevices returns the devices of one rack, including their
// IP and MAC bindings. A missing rack_id yields an empty list rather
// than an error so clients can render before selecting a rack.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	rackID := r.URL.Query().Get("rack_id")
	if rackID == "" {
		writeOK(w, []inventory.Device{})
		return
	}

	devices, err := s.inventory.ListDevicesByRack(r.Context(), rackID)
	if err != nil {
		s.logger.Error("failed to list devices", "rack_id", rackID, "error", err)
		writeStorageError(w)
		return
	}
	writeOK(w, devices)
}

// handleCreateDevice validates and persists a new device. The response
// carries an explicit ack flag so clients can distinguish a committed
// write from a transport-level success.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var input inventory.DeviceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeValidationError(w, map[string][]string{"body": {"invalid JSON payload"}})
		return
	}

	id, err := s.service.CreateDevice(r.Context(), input, clientOrigin(r))
	if err != nil {
		var fieldErrs inventory.FieldErrors
		if errors.As(err, &fieldErrs) {
			writeValidationError(w, fieldErrs)
			return
		}
		s.logger.Error("device create failed", "error", err)
		writeStorageError(w)
		return
	}

	writeOK(w, map[string]any{"id": id, "ack": true})
}

// handleDeleteDevice removes a device and its address bindings.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.service.DeleteDevice(r.Context(), id, clientOrigin(r)); err != nil {
		if errors.Is(err, inventory.ErrDeviceNotFound) {
			writeNotFound(w)
			return
		}
		s.logger.Error("device delete failed", "id", id, "error", err)
		writeStorageError(w)
		return
	}

	writeOK(w, map[string]any{"id": id})
}
