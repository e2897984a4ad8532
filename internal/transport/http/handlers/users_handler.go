package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ivankudzin/swipedeck/internal/domain/model"
	userssvc "github.com/ivankudzin/swipedeck/internal/services/users"
	"github.com/ivankudzin/swipedeck/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/swipedeck/internal/transport/http/errors"
)

type UsersHandler struct {
	service *userssvc.Service
	logger  *zap.Logger
}

func NewUsersHandler(service *userssvc.Service, logger *zap.Logger) *UsersHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UsersHandler{service: service, logger: logger}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "USERS_UNAVAILABLE", "users service is unavailable")
		return
	}

	query := r.URL.Query()
	limit := parseIntOrDefault(query.Get("limit"), 0)
	skip := parseIntOrDefault(query.Get("skip"), 0)
	fields := userssvc.ParseSelect(query.Get("select"))

	page, err := h.service.List(r.Context(), limit, skip)
	if err != nil {
		if errors.Is(err, userssvc.ErrUnavailable) {
			writeUnavailable(w, "USERS_UNAVAILABLE", "users store is unavailable")
			return
		}
		h.logger.Error("list users failed", zap.Int("limit", limit), zap.Int("skip", skip), zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", "failed to list users")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UsersResponse{
		Total: page.Total,
		Skip:  page.Skip,
		Limit: page.Limit,
		Users: projectUsers(page.Users, fields),
	})
}

func projectUsers(users []model.User, fields userssvc.Fields) []dto.UserItem {
	items := make([]dto.UserItem, 0, len(users))
	for _, u := range users {
		item := dto.UserItem{ID: u.ID}
		if fields.FirstName {
			name := u.FirstName
			item.FirstName = &name
		}
		if fields.Image {
			image := u.Image
			item.Image = &image
		}
		items = append(items, item)
	}
	return items
}
