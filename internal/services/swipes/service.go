package swipes

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/swipedeck/internal/domain/enums"
	"github.com/ivankudzin/swipedeck/internal/domain/model"
	"github.com/ivankudzin/swipedeck/internal/pkg/validate"
	pgrepo "github.com/ivankudzin/swipedeck/internal/repo/postgres"
)

const (
	// Decisions stamped further ahead than this are treated as clock errors.
	maxClockSkew    = 5 * time.Minute
	maxSessionIDLen = 128
)

var (
	ErrValidation  = errors.New("validation error")
	ErrTooFast     = errors.New("too fast")
	ErrUnavailable = errors.New("swipe store unavailable")
)

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast, retry after " + strconv.FormatInt(e.RetryAfterSec, 10) + "s"
}

func (e TooFastError) Is(target error) bool {
	return target == ErrTooFast
}

type SwipeStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, tx pgx.Tx, rec pgrepo.SwipeRecord) (bool, error)
	IncrementProfileStats(ctx context.Context, tx pgx.Tx, targetUserID int64, action string) error
}

type RateLimiter interface {
	AllowDecision(ctx context.Context, sessionID string) (int64, bool, error)
}

type TxRunner func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error

type Dependencies struct {
	Pool        *pgxpool.Pool
	TxRunner    TxRunner
	SwipeStore  SwipeStore
	RateLimiter RateLimiter
}

type Service struct {
	runTx       TxRunner
	swipeStore  SwipeStore
	rateLimiter RateLimiter
	now         func() time.Time
}

type RecordResult struct {
	Duplicate bool
}

func NewService(deps Dependencies) *Service {
	runTx := deps.TxRunner
	if runTx == nil && deps.Pool != nil {
		pool := deps.Pool
		runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		}
	}

	return &Service{
		runTx:       runTx,
		swipeStore:  deps.SwipeStore,
		rateLimiter: deps.RateLimiter,
		now:         time.Now,
	}
}

// Record stores one deck decision. Submitting the same decision id twice is
// accepted and counted once.
func (s *Service) Record(ctx context.Context, swipe model.Swipe) (RecordResult, error) {
	rec, err := s.normalize(swipe)
	if err != nil {
		return RecordResult{}, err
	}
	if s.runTx == nil || s.swipeStore == nil {
		return RecordResult{}, ErrUnavailable
	}

	// Resubmissions are answered before the rate limiter so retries do not
	// spend the session's budget.
	exists, err := s.swipeStore.Exists(ctx, rec.ID)
	if err != nil {
		return RecordResult{}, fmt.Errorf("check existing swipe: %w", err)
	}
	if exists {
		return RecordResult{Duplicate: true}, nil
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowDecision(ctx, rec.SessionID)
		if err != nil {
			return RecordResult{}, fmt.Errorf("apply decision rate limiter: %w", err)
		}
		if !allowed {
			return RecordResult{}, TooFastError{RetryAfterSec: retryAfter}
		}
	}

	inserted := false
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		created, err := s.swipeStore.Create(txCtx, tx, rec)
		if err != nil {
			return err
		}
		inserted = created
		if !created {
			return nil
		}
		return s.swipeStore.IncrementProfileStats(txCtx, tx, rec.TargetUserID, rec.Action)
	}); err != nil {
		return RecordResult{}, err
	}

	return RecordResult{Duplicate: !inserted}, nil
}

func (s *Service) normalize(swipe model.Swipe) (pgrepo.SwipeRecord, error) {
	if !validate.UUID(swipe.ID) {
		return pgrepo.SwipeRecord{}, fmt.Errorf("%w: id must be a uuid", ErrValidation)
	}
	if !validate.Key(swipe.SessionID, maxSessionIDLen) {
		return pgrepo.SwipeRecord{}, fmt.Errorf("%w: session_id is required", ErrValidation)
	}
	if swipe.TargetUserID <= 0 {
		return pgrepo.SwipeRecord{}, fmt.Errorf("%w: target_user_id must be positive", ErrValidation)
	}

	direction, ok := enums.ParseSwipeDirection(string(swipe.Direction))
	if !ok || !direction.IsDismissal() {
		return pgrepo.SwipeRecord{}, fmt.Errorf("%w: direction must be left or right", ErrValidation)
	}
	expected, _ := enums.ActionForDirection(direction)
	action := expected
	if validate.Required(string(swipe.Action)) {
		parsed, ok := enums.ParseSwipeAction(string(swipe.Action))
		if !ok || parsed != expected {
			return pgrepo.SwipeRecord{}, fmt.Errorf("%w: action does not match direction", ErrValidation)
		}
		action = parsed
	}

	now := s.now().UTC()
	createdAt := swipe.CreatedAt.UTC()
	if swipe.CreatedAt.IsZero() {
		createdAt = now
	}
	if createdAt.After(now.Add(maxClockSkew)) {
		return pgrepo.SwipeRecord{}, fmt.Errorf("%w: created_at is in the future", ErrValidation)
	}

	return pgrepo.SwipeRecord{
		ID:           uuid.MustParse(strings.TrimSpace(swipe.ID)).String(),
		SessionID:    strings.TrimSpace(swipe.SessionID),
		TargetUserID: swipe.TargetUserID,
		Direction:    string(direction),
		Action:       string(action),
		CreatedAt:    createdAt,
	}, nil
}
