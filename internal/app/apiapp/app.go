package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivankudzin/swipedeck/internal/config"
	s3infra "github.com/ivankudzin/swipedeck/internal/infra/s3"
	pgrepo "github.com/ivankudzin/swipedeck/internal/repo/postgres"
	redrepo "github.com/ivankudzin/swipedeck/internal/repo/redis"
	mediasvc "github.com/ivankudzin/swipedeck/internal/services/media"
	ratesvc "github.com/ivankudzin/swipedeck/internal/services/rate"
	swipesvc "github.com/ivankudzin/swipedeck/internal/services/swipes"
	userssvc "github.com/ivankudzin/swipedeck/internal/services/users"
)

const ensureBucketTimeout = 5 * time.Second

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	images     *mediasvc.S3Storage
	swipeRepo  *pgrepo.SwipeRepo
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	cacheRepo := redrepo.NewCacheRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)
	swipeRepo := pgrepo.NewSwipeRepo(pool)

	var images *mediasvc.S3Storage
	var signer mediasvc.URLSigner
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		images = mediasvc.NewS3Storage(c, cfg.S3.Bucket)
		signer = images
	}

	// A nil pool must stay a nil interface so the services report degraded mode.
	var userStore userssvc.Store
	if pool != nil {
		userStore = pgrepo.NewUserRepo(pool)
	}

	userService := userssvc.NewService(userssvc.Dependencies{
		Store: userStore,
		Cache: cacheRepo,
		Images: mediasvc.NewResolver(signer, mediasvc.ResolverConfig{
			PresignTTL:   cfg.S3.PresignTTL,
			PublicPrefix: cfg.S3.PublicPrefix,
		}),
		Logger: log,
	}, userssvc.Config{
		PageTTL:      cfg.Cache.PageTTL,
		DefaultLimit: cfg.UsersAPI.PageSize,
		MaxLimit:     cfg.Limits.MaxPageSize,
	})

	rateLimiter := ratesvc.NewLimiter(
		rateRepo,
		cfg.Limits.DecisionsPerMinute,
		cfg.Limits.DecisionsPer10Seconds,
	)
	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Pool:        pool,
		SwipeStore:  swipeRepo,
		RateLimiter: rateLimiter,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		UserService:  userService,
		SwipeService: swipeService,
		Logger:       log,
		Config:       cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		images:     images,
		swipeRepo:  swipeRepo,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	go a.ensureBucket()

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

// SwipeRetention exposes the store the retention job prunes. It is nil in
// degraded mode.
func (a *App) SwipeRetention() *pgrepo.SwipeRepo {
	if a.postgres == nil {
		return nil
	}
	return a.swipeRepo
}

func (a *App) ensureBucket() {
	if a.images == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), ensureBucketTimeout)
	defer cancel()
	if err := a.images.EnsureBucket(ctx); err != nil {
		a.logger.Warn("s3 bucket is not ready", zap.Error(err))
	}
}
