package deckapp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivankudzin/swipedeck/internal/domain/enums"
	"github.com/ivankudzin/swipedeck/internal/domain/model"
	"github.com/ivankudzin/swipedeck/internal/services/card"
	"github.com/ivankudzin/swipedeck/internal/services/deck"
)

type memorySource struct {
	mu    sync.Mutex
	users []model.User
	err   error
	calls int
}

func newMemorySource(n int) *memorySource {
	users := make([]model.User, 0, n)
	for i := 1; i <= n; i++ {
		users = append(users, model.User{
			ID:        int64(i),
			FirstName: fmt.Sprintf("User%d", i),
			Image:     fmt.Sprintf("https://img.example/%d.png", i),
		})
	}
	return &memorySource{users: users}
}

func (s *memorySource) FetchUsers(_ context.Context, limit, skip int) (model.UsersPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return model.UsersPage{}, s.err
	}
	end := skip + limit
	if end > len(s.users) {
		end = len(s.users)
	}
	page := model.UsersPage{Total: len(s.users), Skip: skip, Limit: limit}
	if skip < end {
		page.Users = append(page.Users, s.users[skip:end]...)
	}
	return page, nil
}

func (s *memorySource) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *memorySource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type sinkStub struct {
	swipes []model.Swipe
}

func (s *sinkStub) Decide(swipe model.Swipe) {
	s.swipes = append(s.swipes, swipe)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type harness struct {
	source *memorySource
	sink   *sinkStub
	clock  *fakeClock
	ctrl   *deck.Controller
}

func newHarness(t *testing.T, users, pageSize int) (Model, *harness) {
	t.Helper()

	h := &harness{
		source: newMemorySource(users),
		sink:   &sinkStub{},
		clock:  &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)},
	}
	h.ctrl = deck.NewController(h.source, deck.Config{PageSize: pageSize, SessionID: "test-session"}, nil)
	h.ctrl.AttachSink(h.sink)

	m := New(Options{
		Controller:    h.ctrl,
		Card:          card.Config{SwipeDuration: 100 * time.Millisecond},
		FrameInterval: 16 * time.Millisecond,
		Now:           h.clock.Now,
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, h
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok, "update must return deckapp.Model")
	return out
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok, "update must return deckapp.Model")
	return out, cmd
}

// firstLoad performs the fetch Init would start.
func firstLoad(t *testing.T, m Model) Model {
	t.Helper()
	m.s.fetching = true
	return update(t, m, m.fetch()())
}

// deliverPages runs cmd and feeds every page result it produces back into m.
func deliverPages(t *testing.T, m Model, cmd tea.Cmd) (Model, int) {
	t.Helper()
	if cmd == nil {
		return m, 0
	}
	delivered := 0
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			var n int
			m, n = deliverPages(t, m, c)
			delivered += n
		}
	case pageLoadedMsg:
		var next tea.Cmd
		m, next = updateCmd(t, m, msg)
		delivered++
		var n int
		m, n = deliverPages(t, m, next)
		delivered += n
	}
	return m, delivered
}

func animating(m Model) bool {
	for _, c := range m.s.cards {
		if c.Animating() {
			return true
		}
	}
	return false
}

// settle plays frames until no card is animating and returns the commands
// the last frames produced.
func settle(t *testing.T, m Model) (Model, []tea.Cmd) {
	t.Helper()
	var cmds []tea.Cmd
	for i := 0; i < 500; i++ {
		var cmd tea.Cmd
		m, cmd = updateCmd(t, m, frameMsg(time.Time{}))
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if !animating(m) {
			return m, cmds
		}
	}
	t.Fatalf("cards did not settle")
	return m, nil
}

func topUser(t *testing.T, m Model) model.User {
	t.Helper()
	top, ok := m.s.controller.State().View().Top()
	require.True(t, ok, "expected a top card")
	return top.User
}

func TestViewEmptyUntilSized(t *testing.T) {
	m := New(Options{Controller: deck.NewController(newMemorySource(3), deck.Config{}, nil)})
	assert.Equal(t, "", m.View())
}

func TestFirstPageShowsTopCard(t *testing.T) {
	m, h := newHarness(t, 5, 10)
	m.s.fetching = true
	assert.Contains(t, m.View(), "Loading profiles")

	m = firstLoad(t, m)

	assert.Equal(t, 1, h.source.callCount())
	assert.Equal(t, "User1", topUser(t, m).FirstName)
	assert.Contains(t, m.View(), "User1")
	assert.Contains(t, m.View(), "0/5")
	for slot, c := range m.s.cards {
		u, ok := c.User()
		require.True(t, ok)
		assert.Equal(t, int64(slot+1), u.ID)
	}
}

func TestArrowKeysSwipeTopCard(t *testing.T) {
	m, h := newHarness(t, 5, 10)
	m = firstLoad(t, m)

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyRight})
	require.NotNil(t, cmd, "swipe must start the frame loop")
	m, _ = settle(t, m)

	require.Len(t, h.sink.swipes, 1)
	assert.Equal(t, int64(1), h.sink.swipes[0].TargetUserID)
	assert.Equal(t, enums.SwipeActionLike, h.sink.swipes[0].Action)
	assert.Equal(t, 1, h.ctrl.State().Consumed)
	assert.Equal(t, "User2", topUser(t, m).FirstName)

	// slot 0 was recycled to the fourth record
	u, ok := m.s.cards[0].User()
	require.True(t, ok)
	assert.Equal(t, int64(4), u.ID)
	assert.Equal(t, card.Point{}, m.s.cards[0].Position())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	_, _ = settle(t, m)

	require.Len(t, h.sink.swipes, 2)
	assert.Equal(t, int64(2), h.sink.swipes[1].TargetUserID)
	assert.Equal(t, enums.SwipeActionDislike, h.sink.swipes[1].Action)
}

func TestKeySwipeIgnoredWhileCardFlies(t *testing.T) {
	m, h := newHarness(t, 5, 10)
	m = firstLoad(t, m)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	_, _ = settle(t, m)

	assert.Len(t, h.sink.swipes, 1)
}

func TestMouseFlickSwipesRight(t *testing.T) {
	m, h := newHarness(t, 5, 10)
	m = firstLoad(t, m)

	m = update(t, m, tea.MouseMsg{X: 40, Y: 6, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.clock.Advance(10 * time.Millisecond)
	m = update(t, m, tea.MouseMsg{X: 50, Y: 6, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	assert.Equal(t, card.PhaseDragging, m.s.cards[0].Phase())
	assert.InDelta(t, 10.0, m.s.cards[0].Position().X, 0.001)
	assert.True(t, m.s.cards[0].Tilt().IsUpper)

	h.clock.Advance(10 * time.Millisecond)
	m = update(t, m, tea.MouseMsg{X: 70, Y: 6, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	assert.Contains(t, m.View(), "LIKE")

	h.clock.Advance(10 * time.Millisecond)
	m, cmd := updateCmd(t, m, tea.MouseMsg{X: 70, Y: 6, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	require.NotNil(t, cmd)
	assert.Equal(t, card.PhaseSwiping, m.s.cards[0].Phase())

	m, _ = settle(t, m)
	require.Len(t, h.sink.swipes, 1)
	assert.Equal(t, enums.SwipeDirectionRight, h.sink.swipes[0].Direction)
	assert.Equal(t, "User2", topUser(t, m).FirstName)
}

func TestMouseShortDragSpringsBack(t *testing.T) {
	m, h := newHarness(t, 5, 10)
	m = firstLoad(t, m)

	m = update(t, m, tea.MouseMsg{X: 40, Y: 12, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.clock.Advance(500 * time.Millisecond)
	m = update(t, m, tea.MouseMsg{X: 45, Y: 12, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	h.clock.Advance(500 * time.Millisecond)
	m = update(t, m, tea.MouseMsg{X: 45, Y: 12, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	assert.Equal(t, card.PhaseSnappingBack, m.s.cards[0].Phase())
	m, _ = settle(t, m)

	assert.Empty(t, h.sink.swipes)
	assert.Equal(t, 0, h.ctrl.State().Consumed)
	assert.Equal(t, card.Point{}, m.s.cards[0].Position())
}

func TestResizeCancelsDrag(t *testing.T) {
	m, h := newHarness(t, 5, 10)
	m = firstLoad(t, m)

	m = update(t, m, tea.MouseMsg{X: 40, Y: 12, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.clock.Advance(10 * time.Millisecond)
	m = update(t, m, tea.MouseMsg{X: 75, Y: 12, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.Equal(t, card.PhaseSnappingBack, m.s.cards[0].Phase())
	assert.Equal(t, noSlot, m.s.dragging)

	m = update(t, m, tea.MouseMsg{X: 75, Y: 12, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	_, _ = settle(t, m)
	assert.Empty(t, h.sink.swipes)
}

func TestExhaustedDeckShowsTryAgainLater(t *testing.T) {
	m, h := newHarness(t, 3, 10)
	m = firstLoad(t, m)

	for i := 0; i < 3; i++ {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
		m, _ = settle(t, m)
	}

	assert.Len(t, h.sink.swipes, 3)
	assert.True(t, h.ctrl.State().Exhausted())
	assert.Contains(t, m.View(), "Try again later")

	_, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Nil(t, cmd, "no card left to swipe")
}

func TestPrefetchAfterSwipe(t *testing.T) {
	m, h := newHarness(t, 10, 5)
	m = firstLoad(t, m)
	require.Equal(t, 1, h.source.callCount())

	var cmds []tea.Cmd
	for i := 0; i < 2; i++ {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
		var frameCmds []tea.Cmd
		m, frameCmds = settle(t, m)
		cmds = append(cmds, frameCmds...)
	}
	require.Equal(t, 2, h.ctrl.State().Consumed)
	assert.True(t, m.s.fetching, "reaching loaded-3 must start the next page")

	delivered := 0
	for _, cmd := range cmds {
		var n int
		m, n = deliverPages(t, m, cmd)
		delivered += n
	}
	assert.Equal(t, 1, delivered)
	assert.Equal(t, 2, h.source.callCount())
	assert.Equal(t, 10, h.ctrl.State().Loaded())
	assert.False(t, m.s.fetching)
}

func TestFailedLoadCanBeRetried(t *testing.T) {
	m, h := newHarness(t, 5, 10)
	h.source.setErr(errors.New("network down"))

	m = firstLoad(t, m)
	require.Error(t, m.s.lastErr)
	assert.Equal(t, 0, h.ctrl.State().Loaded())
	view := m.View()
	assert.Contains(t, view, "Try again later")
	assert.Contains(t, view, "r to retry")

	h.source.setErr(nil)
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)

	m, delivered := deliverPages(t, m, cmd)
	assert.Equal(t, 1, delivered)
	assert.NoError(t, m.s.lastErr)
	assert.Equal(t, 5, h.ctrl.State().Loaded())
	assert.Equal(t, "User1", topUser(t, m).FirstName)
}

func TestRetryIgnoredWithoutError(t *testing.T) {
	m, _ := newHarness(t, 5, 10)
	m = firstLoad(t, m)

	_, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	assert.Nil(t, cmd)
}

func TestQuitClosesController(t *testing.T) {
	m, h := newHarness(t, 5, 10)

	_, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, err := h.ctrl.LoadNextPage(context.Background())
	assert.ErrorIs(t, err, deck.ErrClosed)
}

func TestOverlayCropsOffscreenCard(t *testing.T) {
	base := []string{"..........", ".........."}
	out := overlay(base, []string{"ABCD", "EFGH"}, -2, 0, 10)
	assert.Equal(t, "CD........", out[0])
	assert.Equal(t, "GH........", out[1])

	out = overlay([]string{"", ""}, []string{"ABCD"}, 8, 1, 10)
	assert.Equal(t, "", out[0])
	assert.Equal(t, "        AB", out[1])
}

func TestSkewLeansAroundMiddleRow(t *testing.T) {
	lines := []string{"aaaa", "bbbb", "cccc"}
	same, offset := skew(lines, 0)
	assert.Equal(t, lines, same)
	assert.Zero(t, offset)

	out, offset := skew(lines, 0.3)
	assert.Equal(t, []string{"  aaaa", " bbbb", "cccc"}, out)
	assert.Equal(t, -1, offset, "middle row must stay anchored")
}
