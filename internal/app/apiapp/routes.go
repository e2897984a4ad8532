package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/swipedeck/internal/config"
	swipesvc "github.com/ivankudzin/swipedeck/internal/services/swipes"
	userssvc "github.com/ivankudzin/swipedeck/internal/services/users"
	"github.com/ivankudzin/swipedeck/internal/transport/http/handlers"
)

type Dependencies struct {
	UserService  *userssvc.Service
	SwipeService *swipesvc.Service
	Logger       *zap.Logger
	Config       config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	usersHandler := handlers.NewUsersHandler(deps.UserService, deps.Logger)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService, deps.Logger)
	configHandler := handlers.NewConfigHandler(deps.Config)
	limitBody := LimitBody(maxRequestBodyBytes)

	r.Get("/healthz", handlers.Healthz)
	r.Get("/config", configHandler.Handle)
	r.Get("/users", usersHandler.List)
	r.With(limitBody).Post("/swipes", swipeHandler.Handle)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/config", configHandler.Handle)
		r.Get("/users", usersHandler.List)
		r.With(limitBody).Post("/swipes", swipeHandler.Handle)
	})
}
