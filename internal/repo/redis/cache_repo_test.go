package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ivankudzin/swipedeck/internal/domain/model"
)

func TestCacheRepoRoundTripAndExpiry(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewCacheRepo(client)
	ctx := context.Background()

	if _, ok, err := repo.GetPage(ctx, 10, 0); err != nil || ok {
		t.Fatalf("expected cache miss, got ok=%v err=%v", ok, err)
	}

	page := model.UsersPage{
		Total: 15,
		Skip:  10,
		Limit: 10,
		Users: []model.User{{ID: 11, FirstName: "Ann", Image: "https://img/11.png"}},
	}
	if err := repo.SetPage(ctx, 10, 10, page, time.Minute); err != nil {
		t.Fatalf("set page: %v", err)
	}

	got, ok, err := repo.GetPage(ctx, 10, 10)
	if err != nil || !ok {
		t.Fatalf("expected cache hit, got ok=%v err=%v", ok, err)
	}
	if got.Total != 15 || len(got.Users) != 1 || got.Users[0].FirstName != "Ann" {
		t.Fatalf("unexpected cached page: %+v", got)
	}

	if _, ok, _ := repo.GetPage(ctx, 5, 10); ok {
		t.Fatalf("pages with a different limit must not share a key")
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := repo.GetPage(ctx, 10, 10); ok {
		t.Fatalf("expected page to expire")
	}
}

func TestCacheRepoSkipsZeroTTL(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewCacheRepo(client)
	if err := repo.SetPage(context.Background(), 10, 0, model.UsersPage{Total: 1}, 0); err != nil {
		t.Fatalf("set page: %v", err)
	}
	if mr.Exists(pageKey(10, 0)) {
		t.Fatalf("zero ttl must disable caching")
	}
}

func TestRateRepoWindow(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewRateRepo(client)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, ttl, err := repo.IncrementWindow(ctx, "rate:test", 10*time.Second)
		if err != nil {
			t.Fatalf("increment window: %v", err)
		}
		if count != want {
			t.Fatalf("unexpected count: got %d want %d", count, want)
		}
		if ttl <= 0 || ttl > 10*time.Second {
			t.Fatalf("unexpected ttl: %s", ttl)
		}
	}

	count, _, err := repo.WindowState(ctx, "rate:test")
	if err != nil || count != 3 {
		t.Fatalf("unexpected window state: count=%d err=%v", count, err)
	}

	mr.FastForward(11 * time.Second)
	count, ttl, err := repo.WindowState(ctx, "rate:test")
	if err != nil || count != 0 || ttl != 0 {
		t.Fatalf("expected empty window, got count=%d ttl=%s err=%v", count, ttl, err)
	}
}

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}

	return mr, NewClient(mr.Addr(), "", 0)
}
