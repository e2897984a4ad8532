package deck

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ivankudzin/swipedeck/internal/domain/enums"
	"github.com/ivankudzin/swipedeck/internal/domain/model"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

var (
	ErrClosed       = errors.New("deck controller is closed")
	ErrNotDismissal = errors.New("direction does not dismiss a card")
)

type Source interface {
	FetchUsers(ctx context.Context, limit, skip int) (model.UsersPage, error)
}

// DecisionSink receives every accepted dismissal. Implementations must not
// block: the controller calls it on the UI goroutine.
type DecisionSink interface {
	Decide(swipe model.Swipe)
}

type Config struct {
	PageSize  int
	SessionID string
}

type LoadResult struct {
	State    State
	Appended int
	Skipped  bool
	Prefetch bool
}

type SwipeResult struct {
	State    State
	Swipe    model.Swipe
	Prefetch bool
}

type Controller struct {
	mu       sync.Mutex
	state    State
	inFlight int
	closed   bool

	source Source
	sink   DecisionSink
	group  singleflight.Group
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewController(source Source, cfg Config, logger *zap.Logger) *Controller {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.PageSize > maxPageSize {
		cfg.PageSize = maxPageSize
	}
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Controller{
		state:  NewState(),
		source: source,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (c *Controller) AttachSink(sink DecisionSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = sink
}

func (c *Controller) SessionID() string {
	return c.cfg.SessionID
}

func (c *Controller) PageSize() int {
	return c.cfg.PageSize
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CanLoad reports whether LoadNextPage would issue a request right now.
func (c *Controller) CanLoad() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.inFlight == 0 && c.state.HasMore()
}

// LoadNextPage fetches the page following the loaded records. It returns
// immediately with Skipped set when the known total is already reached.
// Concurrent calls for the same offset share a single request; only the
// first result is appended. On failure the state is left as it was.
func (c *Controller) LoadNextPage(ctx context.Context) (LoadResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return LoadResult{Skipped: true}, ErrClosed
	}
	if !c.state.HasMore() {
		state := c.state
		c.mu.Unlock()
		return LoadResult{State: state, Skipped: true}, nil
	}
	if c.source == nil {
		state := c.state
		c.mu.Unlock()
		return LoadResult{State: state}, fmt.Errorf("deck source is nil")
	}
	c.inFlight++
	skip := c.state.Loaded()
	limit := c.cfg.PageSize
	c.mu.Unlock()

	value, err, _ := c.group.Do(strconv.Itoa(skip), func() (any, error) {
		return c.source.FetchUsers(ctx, limit, skip)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--

	if err != nil {
		c.logger.Warn("load users page failed",
			zap.Int("skip", skip),
			zap.Int("limit", limit),
			zap.Error(err),
		)
		return LoadResult{State: c.state}, fmt.Errorf("load users page: %w", err)
	}
	if c.closed {
		c.logger.Debug("dropping users page for closed deck", zap.Int("skip", skip))
		return LoadResult{Skipped: true}, ErrClosed
	}
	if c.state.Loaded() != skip {
		c.logger.Debug("dropping stale users page", zap.Int("skip", skip), zap.Int("loaded", c.state.Loaded()))
		return LoadResult{State: c.state, Skipped: true}, nil
	}

	page := value.(model.UsersPage)
	before := c.state.Loaded()
	c.state = c.state.AppendPage(page)
	appended := c.state.Loaded() - before

	c.logger.Debug("users page loaded",
		zap.Int("skip", skip),
		zap.Int("appended", appended),
		zap.Int("total", c.state.Total),
	)

	return LoadResult{
		State:    c.state,
		Appended: appended,
		Prefetch: c.state.ShouldPrefetch() && c.state.HasMore(),
	}, nil
}

// OnCardSwiped records an accepted dismissal of the card in slot and
// recycles the slot. The decision is handed to the sink before the slot
// moves on to its next record.
func (c *Controller) OnCardSwiped(slot int, recordID int64, direction enums.SwipeDirection) (SwipeResult, error) {
	action, ok := enums.ActionForDirection(direction)
	if !ok {
		return SwipeResult{}, ErrNotDismissal
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return SwipeResult{State: c.state}, ErrClosed
	}

	next, err := c.state.ApplySwipe(slot, recordID)
	if err != nil {
		return SwipeResult{State: c.state}, err
	}

	swipe := model.Swipe{
		ID:           c.newID(),
		SessionID:    c.cfg.SessionID,
		TargetUserID: recordID,
		Direction:    direction,
		Action:       action,
		CreatedAt:    c.now().UTC(),
	}
	if c.sink != nil {
		c.sink.Decide(swipe)
	}

	c.state = next
	return SwipeResult{
		State:    next,
		Swipe:    swipe,
		Prefetch: next.ShouldPrefetch() && next.HasMore(),
	}, nil
}

// Close discards the results of loads that are still running.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
