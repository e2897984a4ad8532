package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ivankudzin/swipedeck/internal/domain/enums"
	"github.com/ivankudzin/swipedeck/internal/domain/model"
	swipesvc "github.com/ivankudzin/swipedeck/internal/services/swipes"
	"github.com/ivankudzin/swipedeck/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/swipedeck/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
	logger  *zap.Logger
}

func NewSwipeHandler(service *swipesvc.Service, logger *zap.Logger) *SwipeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SwipeHandler{service: service, logger: logger}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperrors.WritePayloadTooLarge(w)
			return
		}
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.service.Record(r.Context(), model.Swipe{
		ID:           req.ID,
		SessionID:    req.SessionID,
		TargetUserID: req.TargetUserID,
		Direction:    enums.SwipeDirection(req.Direction),
		Action:       enums.SwipeAction(req.Action),
		CreatedAt:    req.CreatedAt,
	})
	if err != nil {
		var tooFast swipesvc.TooFastError
		switch {
		case errors.Is(err, swipesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		case errors.As(err, &tooFast):
			httperrors.WriteRateLimited(w, httperrors.RateLimitError{
				Code:          "TOO_FAST",
				Message:       "too many decisions, slow down",
				RetryAfterSec: tooFast.RetryAfterSec,
			})
		case errors.Is(err, swipesvc.ErrUnavailable):
			writeUnavailable(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe store is unavailable")
		default:
			h.logger.Error("record swipe failed", zap.String("swipe_id", req.ID), zap.Error(err))
			writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
		}
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	httperrors.Write(w, status, dto.SwipeResponse{OK: true, Duplicate: result.Duplicate})
}
