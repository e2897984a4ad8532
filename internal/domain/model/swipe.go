package model

import (
	"time"

	"github.com/ivankudzin/swipedeck/internal/domain/enums"
)

type Swipe struct {
	ID           string               `json:"id"`
	SessionID    string               `json:"session_id"`
	TargetUserID int64                `json:"target_user_id"`
	Direction    enums.SwipeDirection `json:"direction"`
	Action       enums.SwipeAction    `json:"action"`
	CreatedAt    time.Time            `json:"created_at"`
}
