package enums

import "strings"

type SwipeAction string

const (
	SwipeActionLike    SwipeAction = "LIKE"
	SwipeActionDislike SwipeAction = "DISLIKE"
)

func ActionForDirection(direction SwipeDirection) (SwipeAction, bool) {
	switch direction {
	case SwipeDirectionRight:
		return SwipeActionLike, true
	case SwipeDirectionLeft:
		return SwipeActionDislike, true
	default:
		return "", false
	}
}

func ParseSwipeAction(raw string) (SwipeAction, bool) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	value = strings.ReplaceAll(value, "_", "")
	switch SwipeAction(value) {
	case SwipeActionLike:
		return SwipeActionLike, true
	case SwipeActionDislike:
		return SwipeActionDislike, true
	default:
		return "", false
	}
}
