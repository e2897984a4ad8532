package decisions

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/swipedeck/internal/domain/model"
)

const (
	defaultQueueSize = 64
	defaultTimeout   = 5 * time.Second
)

var ErrAlreadyRunning = errors.New("decisions dispatcher is already running")

type Publisher interface {
	PostSwipe(ctx context.Context, swipe model.Swipe) error
}

type Config struct {
	QueueSize int
	Timeout   time.Duration
}

type Stats struct {
	Queued    int64
	Published int64
	Failed    int64
	Dropped   int64
}

// Dispatcher hands swipe decisions to a Publisher off the caller's goroutine.
// Decide never blocks; when the queue is full the decision is dropped.
type Dispatcher struct {
	publisher Publisher
	queue     chan model.Swipe
	timeout   time.Duration
	logger    *zap.Logger

	running atomic.Bool

	// mu orders sends against shutdown so nothing is queued after the
	// final flush.
	mu     sync.Mutex
	closed bool

	queued    atomic.Int64
	published atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

func NewDispatcher(publisher Publisher, cfg Config, logger *zap.Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		publisher: publisher,
		queue:     make(chan model.Swipe, cfg.QueueSize),
		timeout:   cfg.Timeout,
		logger:    logger,
	}
}

func (d *Dispatcher) Decide(swipe model.Swipe) {
	d.logger.Info("swipe decision",
		zap.String("swipe_id", swipe.ID),
		zap.Int64("user_id", swipe.TargetUserID),
		zap.String("direction", string(swipe.Direction)),
		zap.String("action", string(swipe.Action)),
	)

	if d.publisher == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.dropped.Add(1)
		d.logger.Warn("decision dropped after shutdown", zap.String("swipe_id", swipe.ID))
		return
	}

	select {
	case d.queue <- swipe:
		d.queued.Add(1)
	default:
		d.dropped.Add(1)
		d.logger.Warn("decision queue is full, dropping", zap.String("swipe_id", swipe.ID))
	}
}

// Run publishes queued decisions until ctx is cancelled, then flushes what
// is still buffered using the per-request timeout.
func (d *Dispatcher) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	if d.publisher == nil {
		<-ctx.Done()
		d.close()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			d.close()
			d.flush()
			return nil
		case swipe := <-d.queue:
			d.publish(ctx, swipe)
		}
	}
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Queued:    d.queued.Load(),
		Published: d.published.Load(),
		Failed:    d.failed.Load(),
		Dropped:   d.dropped.Load(),
	}
}

func (d *Dispatcher) close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

func (d *Dispatcher) flush() {
	for {
		select {
		case swipe := <-d.queue:
			d.publish(context.Background(), swipe)
		default:
			return
		}
	}
}

func (d *Dispatcher) publish(parent context.Context, swipe model.Swipe) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), d.timeout)
	defer cancel()

	if err := d.publisher.PostSwipe(ctx, swipe); err != nil {
		d.failed.Add(1)
		d.logger.Warn("publish decision failed",
			zap.Error(err),
			zap.String("swipe_id", swipe.ID),
			zap.Int64("user_id", swipe.TargetUserID),
		)
		return
	}
	d.published.Add(1)
}
