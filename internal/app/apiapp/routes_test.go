package apiapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	pgrepo "github.com/ivankudzin/swipedeck/internal/repo/postgres"
	swipesvc "github.com/ivankudzin/swipedeck/internal/services/swipes"
)

type countingSwipeStore struct {
	creates int
}

func (s *countingSwipeStore) Exists(context.Context, string) (bool, error) {
	return false, nil
}

func (s *countingSwipeStore) Create(context.Context, pgx.Tx, pgrepo.SwipeRecord) (bool, error) {
	s.creates++
	return true, nil
}

func (s *countingSwipeStore) IncrementProfileStats(context.Context, pgx.Tx, int64, string) error {
	return nil
}

func newSwipeRouter(store swipesvc.SwipeStore) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, Dependencies{
		SwipeService: swipesvc.NewService(swipesvc.Dependencies{
			TxRunner: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
				return fn(ctx, nil)
			},
			SwipeStore: store,
		}),
	})
	return r
}

func TestSwipesRejectsOversizedStreamedBody(t *testing.T) {
	store := &countingSwipeStore{}
	router := newSwipeRouter(store)

	body := `{"id":"` + uuid.NewString() + `","session_id":"` + strings.Repeat("s", 70<<10) +
		`","target_user_id":5,"direction":"left"}`

	for _, path := range []string{"/swipes", "/v1/swipes"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.ContentLength = -1
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("%s: unexpected status: got %d want %d (%s)", path, rr.Code, http.StatusRequestEntityTooLarge, rr.Body.String())
		}
		var payload struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
			t.Fatalf("%s: decode response: %v", path, err)
		}
		if payload.Code != "PAYLOAD_TOO_LARGE" {
			t.Fatalf("%s: unexpected code: got %q want %q", path, payload.Code, "PAYLOAD_TOO_LARGE")
		}
	}
	if store.creates != 0 {
		t.Fatalf("oversized body must not be stored: %d", store.creates)
	}
}

func TestSwipesAcceptsStreamedBodyUnderLimit(t *testing.T) {
	store := &countingSwipeStore{}
	router := newSwipeRouter(store)

	body := `{"id":"` + uuid.NewString() + `","session_id":"s-1","target_user_id":5,"direction":"left"}`
	req := httptest.NewRequest(http.MethodPost, "/swipes", strings.NewReader(body))
	req.ContentLength = -1
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d (%s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if store.creates != 1 {
		t.Fatalf("unexpected creates: got %d want 1", store.creates)
	}
}
