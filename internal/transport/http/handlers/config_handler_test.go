package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ivankudzin/swipedeck/internal/config"
)

func TestConfigHandlerResponseShape(t *testing.T) {
	h := NewConfigHandler(config.Default())

	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	rr := httptest.NewRecorder()
	h.Handle(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	requireObjectKey(t, raw, "users")
	requireObjectKey(t, raw, "gesture")
	requireObjectKey(t, raw, "limits")

	gesture := raw["gesture"].(map[string]interface{})
	if gesture["velocity_threshold"].(float64) != 3 {
		t.Fatalf("unexpected velocity_threshold: %v", gesture["velocity_threshold"])
	}
	if gesture["distance_ratio"].(float64) != 0.2 {
		t.Fatalf("unexpected distance_ratio: %v", gesture["distance_ratio"])
	}
	if int(gesture["swipe_duration_ms"].(float64)) != 100 {
		t.Fatalf("unexpected swipe_duration_ms: %v", gesture["swipe_duration_ms"])
	}

	users := raw["users"].(map[string]interface{})
	if int(users["max_page_size"].(float64)) != 100 {
		t.Fatalf("unexpected max_page_size: %v", users["max_page_size"])
	}

	limits := raw["limits"].(map[string]interface{})
	if int(limits["decisions_per_minute"].(float64)) != 120 {
		t.Fatalf("unexpected decisions_per_minute: %v", limits["decisions_per_minute"])
	}
}

func TestHealthz(t *testing.T) {
	rr := httptest.NewRecorder()
	Healthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK || rr.Body.String() != "{\"ok\":true}\n" {
		t.Fatalf("unexpected healthz response: %d %q", rr.Code, rr.Body.String())
	}
}

func requireObjectKey(t *testing.T, m map[string]interface{}, key string) {
	t.Helper()
	if _, ok := m[key]; !ok {
		t.Fatalf("missing key %q in %v", key, m)
	}
}
