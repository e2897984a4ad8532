package dto

type ConfigResponse struct {
	Users   ConfigUsersResponse   `json:"users"`
	Gesture ConfigGestureResponse `json:"gesture"`
	Limits  ConfigLimitsResponse  `json:"limits"`
}

type ConfigUsersResponse struct {
	PageSize    int `json:"page_size"`
	MaxPageSize int `json:"max_page_size"`
}

type ConfigGestureResponse struct {
	VelocityThreshold float64 `json:"velocity_threshold"`
	DistanceRatio     float64 `json:"distance_ratio"`
	VelocityTickMS    int64   `json:"velocity_tick_ms"`
	SwipeDurationMS   int64   `json:"swipe_duration_ms"`
}

type ConfigLimitsResponse struct {
	DecisionsPerMinute int `json:"decisions_per_minute"`
	DecisionsPer10Sec  int `json:"decisions_per_10sec"`
}
