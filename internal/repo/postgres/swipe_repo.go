package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

type SwipeRecord struct {
	ID           string
	SessionID    string
	TargetUserID int64
	Direction    string
	Action       string
	CreatedAt    time.Time
}

// Create stores a decision. A decision with an id that already exists is
// left untouched and reported as not inserted.
func (r *SwipeRepo) Create(ctx context.Context, tx pgx.Tx, rec SwipeRecord) (bool, error) {
	if strings.TrimSpace(rec.ID) == "" || strings.TrimSpace(rec.SessionID) == "" || rec.TargetUserID <= 0 {
		return false, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	tag, err := tx.Exec(ctx, `
INSERT INTO swipes (
	id,
	session_id,
	target_user_id,
	direction,
	action,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING
`, rec.ID, rec.SessionID, rec.TargetUserID, rec.Direction, strings.ToUpper(rec.Action), rec.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("create swipe: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// Exists reports whether a decision with id has already been stored.
func (r *SwipeRepo) Exists(ctx context.Context, id string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM swipes WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check swipe exists: %w", err)
	}
	return exists, nil
}

// IncrementProfileStats bumps the like or dislike counter of a profile.
func (r *SwipeRepo) IncrementProfileStats(ctx context.Context, tx pgx.Tx, targetUserID int64, action string) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	likes, dislikes := 0, 0
	switch strings.ToUpper(action) {
	case "LIKE":
		likes = 1
	case "DISLIKE":
		dislikes = 1
	default:
		return fmt.Errorf("unsupported swipe action %q", action)
	}

	_, err := tx.Exec(ctx, `
INSERT INTO profile_stats (profile_id, likes, dislikes, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (profile_id) DO UPDATE
SET likes = profile_stats.likes + EXCLUDED.likes,
	dislikes = profile_stats.dislikes + EXCLUDED.dislikes,
	updated_at = NOW()
`, targetUserID, likes, dislikes)
	if err != nil {
		return fmt.Errorf("increment profile stats: %w", err)
	}
	return nil
}

func (r *SwipeRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM swipes WHERE created_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete stale swipes: %w", err)
	}
	return tag.RowsAffected(), nil
}
