package deck

import (
	"errors"

	"github.com/ivankudzin/swipedeck/internal/domain/model"
	"github.com/ivankudzin/swipedeck/internal/domain/rules"
)

var (
	ErrUnknownSlot = errors.New("unknown deck slot")
	ErrEmptySlot   = errors.New("deck slot has no card")
	ErrStaleSwipe  = errors.New("swipe does not match the card in the slot")
)

// State is the whole deck as an immutable value. Transitions return a new
// State and never modify the receiver's Users backing array in place.
type State struct {
	Users      []model.User
	Total      int
	TotalKnown bool
	Slots      [rules.DeckSlots]int
	Consumed   int
}

func NewState() State {
	var s State
	for slot := range s.Slots {
		s.Slots[slot] = slot
	}
	return s
}

func (s State) Loaded() int {
	return len(s.Users)
}

// HasMore reports whether the source may still hold unseen records.
// Before the first page arrives the total is unknown and loading is allowed.
func (s State) HasMore() bool {
	if !s.TotalKnown {
		return true
	}
	return len(s.Users) < s.Total
}

func (s State) UserAt(slot int) (model.User, bool) {
	if slot < 0 || slot >= rules.DeckSlots {
		return model.User{}, false
	}
	idx := s.Slots[slot]
	if idx < 0 || idx >= len(s.Users) {
		return model.User{}, false
	}
	return s.Users[idx], true
}

func (s State) Exhausted() bool {
	return s.Consumed == len(s.Users)
}

func (s State) ShouldPrefetch() bool {
	return rules.ShouldPrefetch(s.Consumed, len(s.Users))
}

func (s State) TopSlot() int {
	return rules.TopSlot(s.Consumed)
}

// ApplySwipe recycles slot past the other two cards and counts the swipe.
// recordID must match the card currently shown in the slot so a late or
// duplicated completion cannot advance the deck twice.
func (s State) ApplySwipe(slot int, recordID int64) (State, error) {
	if slot < 0 || slot >= rules.DeckSlots {
		return s, ErrUnknownSlot
	}
	user, ok := s.UserAt(slot)
	if !ok {
		return s, ErrEmptySlot
	}
	if user.ID != recordID {
		return s, ErrStaleSwipe
	}

	next := s
	next.Slots[slot] += rules.DeckSlots
	next.Consumed++
	return next, nil
}

// AppendPage adds the records of page that are not loaded yet and adopts
// the page's total as the new stop condition.
func (s State) AppendPage(page model.UsersPage) State {
	seen := make(map[int64]struct{}, len(s.Users)+len(page.Users))
	for _, u := range s.Users {
		seen[u.ID] = struct{}{}
	}

	users := make([]model.User, len(s.Users), len(s.Users)+len(page.Users))
	copy(users, s.Users)
	for _, u := range page.Users {
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		users = append(users, u)
	}

	next := s
	next.Users = users
	next.Total = page.Total
	next.TotalKnown = true
	return next
}

type SlotView struct {
	Slot   int
	User   model.User
	ZIndex int
	IsTop  bool
}

type View struct {
	// Cards are ordered bottom to top.
	Cards    []SlotView
	Terminal bool
}

// View projects the state onto what has to be drawn.
func (s State) View() View {
	var v View
	if s.Exhausted() {
		v.Terminal = true
	}
	if len(s.Users) == 0 {
		return v
	}

	for z := 0; z < rules.DeckSlots; z++ {
		for slot := 0; slot < rules.DeckSlots; slot++ {
			if rules.SlotZIndex(slot, s.Consumed) != z {
				continue
			}
			user, ok := s.UserAt(slot)
			if !ok {
				continue
			}
			v.Cards = append(v.Cards, SlotView{
				Slot:   slot,
				User:   user,
				ZIndex: z,
				IsTop:  z == rules.TopZIndex,
			})
		}
	}
	return v
}

func (v View) Top() (SlotView, bool) {
	if len(v.Cards) == 0 {
		return SlotView{}, false
	}
	top := v.Cards[len(v.Cards)-1]
	if !top.IsTop {
		return SlotView{}, false
	}
	return top, true
}
