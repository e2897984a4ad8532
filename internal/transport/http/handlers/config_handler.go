package handlers

import (
	"net/http"

	"github.com/ivankudzin/swipedeck/internal/config"
	"github.com/ivankudzin/swipedeck/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/swipedeck/internal/transport/http/errors"
)

// ConfigHandler exposes the settings a deck client should mirror.
type ConfigHandler struct {
	cfg config.Config
}

func NewConfigHandler(cfg config.Config) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

func (h *ConfigHandler) Handle(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, dto.ConfigResponse{
		Users: dto.ConfigUsersResponse{
			PageSize:    h.cfg.UsersAPI.PageSize,
			MaxPageSize: h.cfg.Limits.MaxPageSize,
		},
		Gesture: dto.ConfigGestureResponse{
			VelocityThreshold: h.cfg.Gesture.VelocityThreshold,
			DistanceRatio:     h.cfg.Gesture.DistanceRatio,
			VelocityTickMS:    h.cfg.Gesture.VelocityTick.Milliseconds(),
			SwipeDurationMS:   h.cfg.Gesture.SwipeDuration.Milliseconds(),
		},
		Limits: dto.ConfigLimitsResponse{
			DecisionsPerMinute: h.cfg.Limits.DecisionsPerMinute,
			DecisionsPer10Sec:  h.cfg.Limits.DecisionsPer10Seconds,
		},
	})
}
