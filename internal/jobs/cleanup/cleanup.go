package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	defaultRetention = 90 * 24 * time.Hour
	defaultInterval  = 6 * time.Hour
)

type SwipePruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Job prunes swipe decisions older than the retention window.
type Job struct {
	swipes    SwipePruner
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewSwipeCleanupJob(swipes SwipePruner, retention time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = defaultRetention
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		swipes:    swipes,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.swipes == nil {
		return nil
	}

	cutoff := j.now().Add(-j.retention)
	deleted, err := j.swipes.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete stale swipes: %w", err)
	}
	if deleted > 0 {
		j.logger.Info("cleanup stale swipes completed", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
	return nil
}

// Schedule runs the job once and then every interval until ctx is done.
func (j *Job) Schedule(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := j.Run(ctx); err != nil && ctx.Err() == nil {
			j.logger.Warn("swipe cleanup failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
