package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ivankudzin/swipedeck/internal/pkg/validate"
)

const (
	decisionsMinuteWindow = time.Minute
	decisions10SecWindow  = 10 * time.Second
	maxSessionKeyLen      = 128
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

// Limiter caps how many swipe decisions one deck session may submit in a
// one minute and a ten second window. A zero limit disables that window.
type Limiter struct {
	store     WindowStore
	perMinute int
	per10Sec  int
}

func NewLimiter(store WindowStore, perMinute, per10Sec int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	if per10Sec < 0 {
		per10Sec = 0
	}

	return &Limiter{
		store:     store,
		perMinute: perMinute,
		per10Sec:  per10Sec,
	}
}

// AllowDecision counts one decision for sessionID and reports whether it
// fits both windows. When it does not, the seconds until the fullest
// window resets are returned.
func (l *Limiter) AllowDecision(ctx context.Context, sessionID string) (int64, bool, error) {
	sessionID, err := normalizeSession(sessionID)
	if err != nil {
		return 0, false, err
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)

	if l.perMinute > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, minuteKey(sessionID), decisionsMinuteWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.perMinute) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if l.per10Sec > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, tenSecKey(sessionID), decisions10SecWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.per10Sec) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}

	return 0, true, nil
}

// RetryAfter reports how long sessionID has to wait without counting a
// new decision.
func (l *Limiter) RetryAfter(ctx context.Context, sessionID string) (int64, error) {
	sessionID, err := normalizeSession(sessionID)
	if err != nil {
		return 0, err
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)

	if l.perMinute > 0 {
		count, ttl, err := l.store.WindowState(ctx, minuteKey(sessionID))
		if err != nil {
			return 0, err
		}
		if count >= int64(l.perMinute) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if l.per10Sec > 0 {
		count, ttl, err := l.store.WindowState(ctx, tenSecKey(sessionID))
		if err != nil {
			return 0, err
		}
		if count >= int64(l.per10Sec) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	return retryAfterSec, nil
}

func normalizeSession(sessionID string) (string, error) {
	if !validate.Key(sessionID, maxSessionKeyLen) {
		return "", fmt.Errorf("invalid session id")
	}
	return strings.TrimSpace(sessionID), nil
}

func minuteKey(sessionID string) string {
	return "rate:decisions:min:" + sessionID
}

func tenSecKey(sessionID string) string {
	return "rate:decisions:10s:" + sessionID
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}
