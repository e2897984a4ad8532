package deckapp

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/ivankudzin/swipedeck/internal/domain/enums"
	"github.com/ivankudzin/swipedeck/internal/domain/rules"
	"github.com/ivankudzin/swipedeck/internal/services/card"
	"github.com/ivankudzin/swipedeck/internal/services/deck"
)

const (
	defaultFrameInterval = 16 * time.Millisecond
	defaultFetchTimeout  = 10 * time.Second
	noSlot               = -1
)

type Options struct {
	Controller    *deck.Controller
	Card          card.Config
	VelocityTick  time.Duration
	FrameInterval time.Duration
	FetchTimeout  time.Duration
	Logger        *zap.Logger
	Now           func() time.Time
}

type pageLoadedMsg struct {
	result deck.LoadResult
	err    error
}

type frameMsg time.Time

// session holds everything that has to survive bubbletea copying the
// model between updates.
type session struct {
	controller *deck.Controller
	cards      [rules.DeckSlots]*card.Card
	tracker    *card.VelocityTracker
	logger     *zap.Logger
	now        func() time.Time

	frameInterval time.Duration
	fetchTimeout  time.Duration

	dragging  int
	ticking   bool
	fetching  bool
	needsLoad bool
	lastErr   error
	swiped    int
}

type Model struct {
	s       *session
	spinner spinner.Model
	theme   theme
	width   int
	height  int
}

func New(opts Options) Model {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = defaultFrameInterval
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Card.Thresholds == (rules.GestureThresholds{}) {
		opts.Card.Thresholds = rules.DefaultGestureThresholds()
	}

	s := &session{
		controller:    opts.Controller,
		tracker:       card.NewVelocityTracker(opts.VelocityTick),
		logger:        opts.Logger,
		now:           opts.Now,
		frameInterval: opts.FrameInterval,
		fetchTimeout:  opts.FetchTimeout,
		dragging:      noSlot,
	}
	for slot := range s.cards {
		s.cards[slot] = card.New(opts.Card, s.onSwipe(slot))
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		s:       s,
		spinner: sp,
		theme:   defaultTheme(),
	}
}

func (m Model) Init() tea.Cmd {
	m.s.fetching = true
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.s.dragging != noSlot {
			m.s.cards[m.s.dragging].Terminate()
			m.endDrag()
		}
		screen := rules.Screen{Width: float64(msg.Width), Height: float64(msg.Height)}
		for _, c := range m.s.cards {
			c.SetScreen(screen)
		}
		return m, m.ensureFrames()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case pageLoadedMsg:
		return m.handlePage(msg)

	case frameMsg:
		return m.handleFrame()

	case spinner.TickMsg:
		if !m.s.fetching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.s.controller.Close()
		return m, tea.Quit
	case "left", "h":
		return m, m.forceSwipe(enums.SwipeDirectionLeft)
	case "right", "l":
		return m, m.forceSwipe(enums.SwipeDirectionRight)
	case "r":
		if m.s.lastErr == nil {
			return m, nil
		}
		return m, m.requestLoad()
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	at := m.s.now()
	point := card.Point{X: float64(msg.X), Y: float64(msg.Y)}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			// Another button steals the gesture.
			if m.s.dragging != noSlot {
				m.s.cards[m.s.dragging].Terminate()
				m.endDrag()
				return m, m.ensureFrames()
			}
			return m, nil
		}
		slot := m.s.controller.State().TopSlot()
		if slot < 0 || !m.s.cards[slot].Grant(point.X, point.Y) {
			return m, nil
		}
		m.s.dragging = slot
		m.s.tracker.Start(at, point)
		return m, nil

	case tea.MouseActionMotion:
		if m.s.dragging == noSlot {
			return m, nil
		}
		m.s.tracker.Add(at, point)
		d := m.s.tracker.Displacement()
		m.s.cards[m.s.dragging].Move(d.X, d.Y)
		return m, nil

	case tea.MouseActionRelease:
		if m.s.dragging == noSlot {
			return m, nil
		}
		m.s.tracker.Add(at, point)
		sample := m.s.tracker.Sample(at)
		direction := m.s.cards[m.s.dragging].Release(sample)
		m.s.logger.Debug("gesture released",
			zap.Int("slot", m.s.dragging),
			zap.String("direction", string(direction)),
			zap.Float64("vx", sample.VX),
			zap.Float64("dx", sample.DX),
		)
		m.endDrag()
		return m, m.ensureFrames()
	}

	return m, nil
}

func (m Model) handlePage(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	m.s.fetching = false
	switch {
	case errors.Is(msg.err, deck.ErrClosed):
		return m, nil
	case msg.err != nil:
		m.s.lastErr = msg.err
	default:
		m.s.lastErr = nil
	}

	m.syncCards()

	if msg.err == nil && msg.result.Prefetch {
		return m, m.requestLoad()
	}
	return m, nil
}

func (m Model) handleFrame() (tea.Model, tea.Cmd) {
	animating := false
	for _, c := range m.s.cards {
		if c.Advance(m.s.frameInterval) {
			animating = true
		}
	}

	var cmds []tea.Cmd
	if m.s.needsLoad {
		m.s.needsLoad = false
		cmds = append(cmds, m.requestLoad())
	}

	if animating {
		cmds = append(cmds, m.tick())
	} else {
		m.s.ticking = false
	}
	return m, tea.Batch(cmds...)
}

func (m Model) forceSwipe(direction enums.SwipeDirection) tea.Cmd {
	state := m.s.controller.State()
	slot := state.TopSlot()
	if slot < 0 || slot == m.s.dragging {
		return nil
	}
	z := rules.SlotZIndex(slot, state.Consumed)
	if !m.s.cards[slot].ForceSwipe(direction, z) {
		return nil
	}
	return m.ensureFrames()
}

// onSwipe is the card callback for slot. It runs inside a frame update,
// after the dismiss animation finished and before the card is recentred.
func (s *session) onSwipe(slot int) card.SwipeFunc {
	return func(direction enums.SwipeDirection, userID int64) {
		result, err := s.controller.OnCardSwiped(slot, userID, direction)
		if err != nil {
			s.logger.Warn("swipe rejected",
				zap.Int("slot", slot),
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return
		}
		s.swiped++

		c := s.cards[slot]
		if user, ok := result.State.UserAt(slot); ok {
			c.SetUser(user)
		} else {
			c.Clear()
		}
		if result.Prefetch {
			s.needsLoad = true
		}
	}
}

// syncCards hands freshly loaded records to slots that have none yet.
func (m Model) syncCards() {
	state := m.s.controller.State()
	for slot, c := range m.s.cards {
		if c.Phase() == card.PhaseSwiping {
			continue
		}
		user, ok := state.UserAt(slot)
		if !ok {
			c.Clear()
			continue
		}
		if current, has := c.User(); !has || current.ID != user.ID {
			c.SetUser(user)
		}
	}
}

func (m Model) requestLoad() tea.Cmd {
	if m.s.fetching || !m.s.controller.CanLoad() {
		return nil
	}
	m.s.fetching = true
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m Model) fetch() tea.Cmd {
	controller := m.s.controller
	timeout := m.s.fetchTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		result, err := controller.LoadNextPage(ctx)
		return pageLoadedMsg{result: result, err: err}
	}
}

func (m Model) ensureFrames() tea.Cmd {
	if m.s.ticking {
		return nil
	}
	for _, c := range m.s.cards {
		if c.Animating() {
			m.s.ticking = true
			return m.tick()
		}
	}
	return nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.s.frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) endDrag() {
	m.s.dragging = noSlot
	m.s.tracker.Reset()
}
