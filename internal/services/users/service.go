package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/swipedeck/internal/domain/model"
	pgrepo "github.com/ivankudzin/swipedeck/internal/repo/postgres"
)

const (
	defaultLimit   = 30
	maxLimit       = 100
	fieldID        = "id"
	fieldFirstName = "firstName"
	fieldImage     = "image"
)

var ErrUnavailable = errors.New("users store unavailable")

type Store interface {
	ListPage(ctx context.Context, limit, skip int) ([]pgrepo.UserRecord, error)
	Count(ctx context.Context) (int, error)
}

type PageCache interface {
	GetPage(ctx context.Context, limit, skip int) (model.UsersPage, bool, error)
	SetPage(ctx context.Context, limit, skip int, page model.UsersPage, ttl time.Duration) error
}

type ImageResolver interface {
	Resolve(ctx context.Context, image string) (string, error)
}

type Dependencies struct {
	Store  Store
	Cache  PageCache
	Images ImageResolver
	Logger *zap.Logger
}

type Config struct {
	PageTTL      time.Duration
	DefaultLimit int
	MaxLimit     int
}

type Service struct {
	store  Store
	cache  PageCache
	images ImageResolver
	logger *zap.Logger
	cfg    Config
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.PageTTL < 0 {
		cfg.PageTTL = 0
	}
	if cfg.MaxLimit <= 0 || cfg.MaxLimit > maxLimit {
		cfg.MaxLimit = maxLimit
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = defaultLimit
	}
	if cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = cfg.MaxLimit
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Service{
		store:  deps.Store,
		cache:  deps.Cache,
		images: deps.Images,
		logger: deps.Logger,
		cfg:    cfg,
	}
}

// List returns one window of profiles ordered by id. The limit is clamped to
// [1, MaxLimit] and a negative skip is treated as zero.
func (s *Service) List(ctx context.Context, limit, skip int) (model.UsersPage, error) {
	if s.store == nil {
		return model.UsersPage{}, ErrUnavailable
	}
	limit, skip = s.window(limit, skip)

	if s.cache != nil {
		page, ok, err := s.cache.GetPage(ctx, limit, skip)
		if err != nil {
			s.logger.Warn("users page cache read failed", zap.Error(err))
		} else if ok {
			return page, nil
		}
	}

	total, err := s.store.Count(ctx)
	if err != nil {
		return model.UsersPage{}, fmt.Errorf("count users: %w", err)
	}

	page := model.UsersPage{
		Total: total,
		Skip:  skip,
		Users: []model.User{},
	}
	if skip < total {
		records, err := s.store.ListPage(ctx, limit, skip)
		if err != nil {
			return model.UsersPage{}, fmt.Errorf("list users: %w", err)
		}
		page.Users = make([]model.User, 0, len(records))
		for _, rec := range records {
			image, err := s.resolveImage(ctx, rec.Image)
			if err != nil {
				return model.UsersPage{}, fmt.Errorf("resolve image of user %d: %w", rec.ID, err)
			}
			page.Users = append(page.Users, model.User{
				ID:        rec.ID,
				FirstName: rec.FirstName,
				Image:     image,
			})
		}
		page.Limit = len(page.Users)
	}

	if s.cache != nil {
		if err := s.cache.SetPage(ctx, limit, skip, page, s.cfg.PageTTL); err != nil {
			s.logger.Warn("users page cache write failed", zap.Error(err))
		}
	}

	return page, nil
}

func (s *Service) window(limit, skip int) (int, int) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	if skip < 0 {
		skip = 0
	}
	return limit, skip
}

func (s *Service) resolveImage(ctx context.Context, image string) (string, error) {
	if s.images == nil {
		return image, nil
	}
	return s.images.Resolve(ctx, image)
}

// Fields is the projection requested through the select query parameter.
// The id is always part of it.
type Fields struct {
	FirstName bool
	Image     bool
}

func AllFields() Fields {
	return Fields{FirstName: true, Image: true}
}

// ParseSelect reads a comma separated field list. Unknown names are ignored
// and an empty list selects everything.
func ParseSelect(raw string) Fields {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AllFields()
	}

	var f Fields
	for _, name := range strings.Split(raw, ",") {
		switch strings.TrimSpace(name) {
		case fieldFirstName:
			f.FirstName = true
		case fieldImage:
			f.Image = true
		case fieldID:
		}
	}
	return f
}
