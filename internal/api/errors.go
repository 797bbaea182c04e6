package api

import (
	"encoding/json"
	"net/http"
)

// Error codes surfaced to clients. The codes are stable identifiers;
// clients switch on them rather than on messages.
const (
	// ErrCodeAckMissing: a write completed without a server acknowledgment.
	// Reserved for clients that time out waiting for the ack field.
	ErrCodeAckMissing = "X101"

	// ErrCodeStorage: the storage transaction failed and was rolled back.
	ErrCodeStorage = "X102"

	// ErrCodeTransport: network-level failure. Reserved for clients; the
	// server itself never emits it.
	ErrCodeTransport = "X103"

	// ErrCodeValidation: input validation failed, or the target resource
	// does not exist.
	ErrCodeValidation = "X104"
)

// Envelope is the uniform response wrapper. Every endpoint returns
// either {ok:true,data:...} or {ok:false,error:{...}}.
type Envelope struct {
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carries a structured error inside the envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeOK writes a success envelope with HTTP 200.
func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{OK: true, Data: data})
}

// writeError writes an error envelope with the given status and code.
func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, Envelope{
		OK: false,
		Error: &ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// writeStorageError writes a 500 X102 response.
func writeStorageError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, ErrCodeStorage, "DB write failed", nil)
}

// writeValidationError writes a 400 X104 response with per-field details.
func writeValidationError(w http.ResponseWriter, details any) {
	writeError(w, http.StatusBadRequest, ErrCodeValidation, "Validation failed on server", details)
}

// writeNotFound writes a 404 X104 response.
func writeNotFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, ErrCodeValidation, "Not found", nil)
}
