package clinicgate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/clinic-gate/internal/cache"
	"github.com/magabrotheeeer/clinic-gate/internal/config"
	"github.com/magabrotheeeer/clinic-gate/internal/lib/jwt"
	"github.com/magabrotheeeer/clinic-gate/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/clinic-gate/internal/migrations"
	"github.com/magabrotheeeer/clinic-gate/internal/ratelimit"
	authservice "github.com/magabrotheeeer/clinic-gate/internal/services/auth"
	biometricservice "github.com/magabrotheeeer/clinic-gate/internal/services/biometric"
	oauthservice "github.com/magabrotheeeer/clinic-gate/internal/services/oauth"
	whitelistservice "github.com/magabrotheeeer/clinic-gate/internal/services/whitelist"
	"github.com/magabrotheeeer/clinic-gate/internal/session"
	"github.com/magabrotheeeer/clinic-gate/internal/storage"
)

type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *storage.Storage
	cache   *cache.Cache
	limiter *ratelimit.MemoryLimiter
	broker  *amqp.Connection
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if err = db.SeedAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return nil, err
		}
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	// Публикация событий необязательна: без брокера publisher остается nil
	// и все вызовы Publish превращаются в no-op.
	var broker *amqp.Connection
	var events *rabbitmq.Publisher
	if cfg.RabbitMQURL != "" {
		broker, err = amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			return nil, err
		}
		events, err = rabbitmq.New(broker)
		if err != nil {
			return nil, err
		}
	}

	tokens := jwt.NewMaker(cfg.Session.SecretKey)
	sessions := session.NewManager(tokens, cacheRedis,
		cfg.Session.UserTTL, cfg.Session.AdminTTL, cfg.Env == "prod")
	limiter := ratelimit.NewMemory()

	whitelistSvc := whitelistservice.NewService(db, events)
	authSvc := authservice.NewService(db, whitelistSvc, events, logger, cfg.Admin.Email)
	biometricSvc := biometricservice.NewService(db, events, authSvc.RoleFor)
	oauthSvc := oauthservice.NewService(cfg.OAuth, db, authSvc.RoleFor)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, tokens, sessions, limiter,
		authSvc, biometricSvc, oauthSvc, whitelistSvc)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:  srv,
		logger:  logger,
		db:      db,
		cache:   cacheRedis,
		limiter: limiter,
		broker:  broker,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.limiter.Stop()
		if a.broker != nil {
			_ = a.broker.Close()
		}
		_ = a.db.DB.Close()
		return err
	}
}
