package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

type UserRecord struct {
	ID        int64
	FirstName string
	Image     string
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// ListPage returns profiles ordered by id, skipping the first skip rows.
func (r *UserRepo) ListPage(ctx context.Context, limit, skip int) ([]UserRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 || skip < 0 {
		return nil, fmt.Errorf("invalid page window")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, first_name, image
FROM profiles
ORDER BY id
LIMIT $1 OFFSET $2
`, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list profiles page: %w", err)
	}
	defer rows.Close()

	users := make([]UserRecord, 0, limit)
	for rows.Next() {
		var rec UserRecord
		if err := rows.Scan(&rec.ID, &rec.FirstName, &rec.Image); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		users = append(users, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profile rows: %w", err)
	}

	return users, nil
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return total, nil
}
