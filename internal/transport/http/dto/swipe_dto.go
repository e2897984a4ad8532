package dto

import "time"

type SwipeRequest struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	TargetUserID int64     `json:"target_user_id"`
	Direction    string    `json:"direction"`
	Action       string    `json:"action,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type SwipeResponse struct {
	OK        bool `json:"ok"`
	Duplicate bool `json:"duplicate,omitempty"`
}
