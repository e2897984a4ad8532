package deckapp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/ivankudzin/swipedeck/internal/config"
	"github.com/ivankudzin/swipedeck/internal/domain/rules"
	"github.com/ivankudzin/swipedeck/internal/infra/usersapi"
	"github.com/ivankudzin/swipedeck/internal/services/card"
	"github.com/ivankudzin/swipedeck/internal/services/decisions"
	"github.com/ivankudzin/swipedeck/internal/services/deck"
)

type App struct {
	cfg        config.Config
	log        *zap.Logger
	controller *deck.Controller
	dispatcher *decisions.Dispatcher
	model      Model
}

func NewApp(cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	source, err := usersapi.New(usersapi.Config{
		BaseURL: cfg.UsersAPI.BaseURL,
		Timeout: cfg.UsersAPI.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create users api client: %w", err)
	}

	var publisher decisions.Publisher
	if cfg.Decisions.Endpoint != "" {
		client, err := usersapi.New(usersapi.Config{
			BaseURL: cfg.Decisions.Endpoint,
			Timeout: cfg.Decisions.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create decisions client: %w", err)
		}
		publisher = client
	} else {
		log.Info("decisions endpoint is not configured, swipes are only logged")
	}

	dispatcher := decisions.NewDispatcher(publisher, decisions.Config{
		QueueSize: cfg.Decisions.QueueSize,
		Timeout:   cfg.Decisions.Timeout,
	}, log.Named("decisions"))

	controller := deck.NewController(source, deck.Config{PageSize: cfg.UsersAPI.PageSize}, log.Named("deck"))
	controller.AttachSink(dispatcher)

	model := New(Options{
		Controller: controller,
		Card: card.Config{
			Thresholds: rules.GestureThresholds{
				Velocity:      cfg.Gesture.VelocityThreshold,
				DistanceRatio: cfg.Gesture.DistanceRatio,
			},
			SwipeDuration:   cfg.Gesture.SwipeDuration,
			SpringFrequency: cfg.Gesture.SpringFrequency,
			SpringDamping:   cfg.Gesture.SpringDamping,
		},
		VelocityTick:  cfg.Gesture.VelocityTick,
		FrameInterval: cfg.Gesture.FrameInterval,
		FetchTimeout:  cfg.UsersAPI.Timeout,
		Logger:        log.Named("ui"),
	})

	return &App{
		cfg:        cfg,
		log:        log,
		controller: controller,
		dispatcher: dispatcher,
		model:      model,
	}, nil
}

// Run blocks until the user quits or ctx is cancelled. Decisions still
// queued at that point are flushed before it returns.
func (a *App) Run(ctx context.Context, opts ...tea.ProgramOption) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.dispatcher.Run(runCtx); err != nil {
			a.log.Error("decisions dispatcher stopped", zap.Error(err))
		}
	}()

	a.log.Info("deck started",
		zap.String("session_id", a.controller.SessionID()),
		zap.String("users_api", a.cfg.UsersAPI.BaseURL),
		zap.Int("page_size", a.controller.PageSize()),
	)

	opts = append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(runCtx),
	}, opts...)
	_, err := tea.NewProgram(a.model, opts...).Run()

	a.controller.Close()
	cancel()
	wg.Wait()

	stats := a.dispatcher.Stats()
	a.log.Info("deck stopped",
		zap.Int("consumed", a.controller.State().Consumed),
		zap.Int64("decisions_published", stats.Published),
		zap.Int64("decisions_failed", stats.Failed),
		zap.Int64("decisions_dropped", stats.Dropped),
	)

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run deck program: %w", err)
	}
	return nil
}
