package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// doRequest runs one request through the full middleware and router chain.
func doRequest(t *testing.T, srv *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope unmarshals the response envelope.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func validDeviceBody() []byte {
	return []byte(`{
		"rack_id": "r1",
		"kind": "SERVER",
		"label": "web-01",
		"ips": [{"address": "10.0.0.5"}],
		"macs": [{"address": "AA:BB:CC:00:11:22"}]
	}`)
}

func TestCreateDevice_Endpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/devices", validDeviceBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	if !env.OK {
		t.Fatal("envelope ok = false, want true")
	}
	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("data is %T, want object", env.Data)
	}
	if id, _ := data["id"].(string); id == "" {
		t.Error("response missing device id")
	}
	if ack, _ := data["ack"].(bool); !ack {
		t.Error("response ack = false, want true")
	}
}

func TestCreateDevice_ValidationFailure(t *testing.T) {
	srv := newTestServer(t)

	body := []byte(`{"rack_id": "r1", "kind": "ROUTER", "label": "", "ips": [{"address": "999.1.1.1"}]}`)
	rec := doRequest(t, srv, http.MethodPost, "/api/devices", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	if env.OK {
		t.Fatal("envelope ok = true, want false")
	}
	if env.Error == nil || env.Error.Code != ErrCodeValidation {
		t.Fatalf("error = %+v, want code %s", env.Error, ErrCodeValidation)
	}
	details, ok := env.Error.Details.(map[string]any)
	if !ok {
		t.Fatalf("details is %T, want per-field map", env.Error.Details)
	}
	for _, field := range []string{"kind", "label", "ips"} {
		if _, present := details[field]; !present {
			t.Errorf("details missing field %q", field)
		}
	}
}

func TestCreateDevice_MalformedJSON(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/devices", []byte(`{not json`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != ErrCodeValidation {
		t.Fatalf("error = %+v, want code %s", env.Error, ErrCodeValidation)
	}
}

func TestCreateDevice_UnknownRack(t *testing.T) {
	srv := newTestServer(t)

	body := []byte(`{"rack_id": "ghost", "kind": "SERVER", "label": "web-01", "ips": [], "macs": []}`)
	rec := doRequest(t, srv, http.MethodPost, "/api/devices", body)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != ErrCodeStorage {
		t.Fatalf("error = %+v, want code %s", env.Error, ErrCodeStorage)
	}
}

func TestDeleteDevice_Endpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/devices", validDeviceBody())
	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	id := data["id"].(string)

	rec = doRequest(t, srv, http.MethodDelete, "/api/devices/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	env = decodeEnvelope(t, rec)
	if !env.OK {
		t.Fatal("envelope ok = false, want true")
	}
	if got := env.Data.(map[string]any)["id"]; got != id {
		t.Errorf("deleted id = %v, want %s", got, id)
	}

	// Gone from the listing too.
	rec = doRequest(t, srv, http.MethodGet, "/api/devices?rack_id=r1", nil)
	env = decodeEnvelope(t, rec)
	if devices, ok := env.Data.([]any); !ok || len(devices) != 0 {
		t.Errorf("devices after delete = %v, want empty list", env.Data)
	}
}

func TestDeleteDevice_NotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodDelete, "/api/devices/no-such-device", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != ErrCodeValidation {
		t.Fatalf("error = %+v, want code %s", env.Error, ErrCodeValidation)
	}
	if env.Error.Message != "Not found" {
		t.Errorf("message = %q, want %q", env.Error.Message, "Not found")
	}
}

func TestListDevices_MissingRackID(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/devices", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if !env.OK {
		t.Fatal("envelope ok = false, want true")
	}
	if devices, ok := env.Data.([]any); !ok || len(devices) != 0 {
		t.Errorf("data = %v, want empty list", env.Data)
	}
}

func TestListDevices_WithBindings(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/devices", validDeviceBody())

	rec := doRequest(t, srv, http.MethodGet, "/api/devices?rack_id=r1", nil)
	env := decodeEnvelope(t, rec)
	devices, ok := env.Data.([]any)
	if !ok || len(devices) != 1 {
		t.Fatalf("data = %v, want one device", env.Data)
	}

	device := devices[0].(map[string]any)
	if device["kind"] != "SERVER" || device["label"] != "web-01" {
		t.Errorf("device = %v, want SERVER web-01", device)
	}
	ips := device["ips"].([]any)
	if len(ips) != 1 {
		t.Fatalf("ips = %v, want one binding", ips)
	}
	if addr := ips[0].(map[string]any)["address"]; addr != "10.0.0.5" {
		t.Errorf("ip address = %v, want 10.0.0.5", addr)
	}
}

func TestListRacks_Endpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/racks", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	racks, ok := env.Data.([]any)
	if !ok || len(racks) != 3 {
		t.Fatalf("data = %v, want three racks", env.Data)
	}
	first := racks[0].(map[string]any)
	if first["id"] != "r1" {
		t.Errorf("first rack = %v, want r1 (position order)", first["id"])
	}
}

func TestListLogs_Endpoint(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/devices", validDeviceBody())

	rec := doRequest(t, srv, http.MethodGet, "/api/logs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	entries, ok := env.Data.([]any)
	if !ok || len(entries) != 1 {
		t.Fatalf("data = %v, want one log entry", env.Data)
	}
	entry := entries[0].(map[string]any)
	if entry["event_type"] != "device_create" {
		t.Errorf("event_type = %v, want device_create", entry["event_type"])
	}
	if success, _ := entry["success"].(bool); !success {
		t.Error("success = false, want true")
	}
}

func TestRequestID_Echoed(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/racks", nil)
	req.Header.Set("X-Request-ID", "test-req-42")
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "test-req-42" {
		t.Errorf("X-Request-ID = %q, want test-req-42", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/devices", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q, want the request origin", got)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "DELETE") {
		t.Error("Allow-Methods should include DELETE")
	}
}
