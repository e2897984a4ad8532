package enums

import "strings"

type SwipeDirection string

const (
	SwipeDirectionNone  SwipeDirection = "none"
	SwipeDirectionLeft  SwipeDirection = "left"
	SwipeDirectionRight SwipeDirection = "right"
	SwipeDirectionUp    SwipeDirection = "up"
	SwipeDirectionDown  SwipeDirection = "down"
)

// IsDismissal reports whether the direction removes a card from the deck.
// Vertical swipes are recognised but never accepted.
func (d SwipeDirection) IsDismissal() bool {
	return d == SwipeDirectionLeft || d == SwipeDirectionRight
}

func ParseSwipeDirection(raw string) (SwipeDirection, bool) {
	switch SwipeDirection(strings.ToLower(strings.TrimSpace(raw))) {
	case SwipeDirectionNone:
		return SwipeDirectionNone, true
	case SwipeDirectionLeft:
		return SwipeDirectionLeft, true
	case SwipeDirectionRight:
		return SwipeDirectionRight, true
	case SwipeDirectionUp:
		return SwipeDirectionUp, true
	case SwipeDirectionDown:
		return SwipeDirectionDown, true
	default:
		return SwipeDirectionNone, false
	}
}
