package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ivankudzin/swipedeck/internal/domain/model"
)

const usersPagePrefix = "users:page:"

// CacheRepo keeps recently served user pages.
type CacheRepo struct {
	client *goredis.Client
}

func NewCacheRepo(client *goredis.Client) *CacheRepo {
	return &CacheRepo{client: client}
}

func (r *CacheRepo) GetPage(ctx context.Context, limit, skip int) (model.UsersPage, bool, error) {
	if r.client == nil {
		return model.UsersPage{}, false, fmt.Errorf("redis client is nil")
	}

	raw, err := r.client.Get(ctx, pageKey(limit, skip)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return model.UsersPage{}, false, nil
	}
	if err != nil {
		return model.UsersPage{}, false, fmt.Errorf("get cached users page: %w", err)
	}

	var page model.UsersPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return model.UsersPage{}, false, fmt.Errorf("decode cached users page: %w", err)
	}
	return page, true, nil
}

func (r *CacheRepo) SetPage(ctx context.Context, limit, skip int, page model.UsersPage, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encode users page: %w", err)
	}
	if err := r.client.Set(ctx, pageKey(limit, skip), raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache users page: %w", err)
	}
	return nil
}

func pageKey(limit, skip int) string {
	return usersPagePrefix + strconv.Itoa(limit) + ":" + strconv.Itoa(skip)
}
