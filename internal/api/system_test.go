package api

import (
	"net/http"
	"testing"
)

func TestHealth_Endpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	if data["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", data["status"])
	}
	if data["database"] != "up" {
		t.Errorf("database = %v, want up", data["database"])
	}
}

func TestPing_Endpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/ping", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	for _, field := range []string{"api_ms", "db_ms", "db_time"} {
		if _, ok := data[field]; !ok {
			t.Errorf("ping response missing %q", field)
		}
	}
	if dbTime, _ := data["db_time"].(string); dbTime == "" {
		t.Error("db_time should be a non-empty timestamp")
	}
}

func TestExport_Endpoint(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/devices", validDeviceBody())

	rec := doRequest(t, srv, http.MethodGet, "/api/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Content-Type = %q, want xlsx", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("export body is empty")
	}
	// XLSX files are ZIP archives.
	if b := rec.Body.Bytes(); len(b) < 2 || b[0] != 'P' || b[1] != 'K' {
		t.Error("export body does not look like a ZIP archive")
	}
}
