package apiapp

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLimitBodyRejectsLargePayload(t *testing.T) {
	mw := LimitBody(8)

	req := httptest.NewRequest(http.MethodPost, "/swipes", strings.NewReader(strings.Repeat("x", 32)))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called for oversized body")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestLimitBodyCapsUnknownLength(t *testing.T) {
	mw := LimitBody(8)

	req := httptest.NewRequest(http.MethodPost, "/swipes", strings.NewReader(strings.Repeat("x", 32)))
	req.ContentLength = -1
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err == nil {
			t.Fatalf("expected read error past the limit")
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	r := chi.NewRouter()
	ApplyMiddlewares(r, zap.New(core))
	r.Get("/teapot", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("unexpected log entries: got %d want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) {
		t.Fatalf("unexpected logged status: %v", fields["status"])
	}
	if fields["path"] != "/teapot" {
		t.Fatalf("unexpected logged path: %v", fields["path"])
	}
	if fields["request_id"] == "" {
		t.Fatalf("expected request id in log entry")
	}
}
