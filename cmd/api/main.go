package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/shiftline/workforce-service/internal/api/http"
	"github.com/shiftline/workforce-service/internal/api/http/handlers"
	"github.com/shiftline/workforce-service/internal/auth"
	"github.com/shiftline/workforce-service/internal/cache"
	"github.com/shiftline/workforce-service/internal/config"
	"github.com/shiftline/workforce-service/internal/domain"
	"github.com/shiftline/workforce-service/internal/events"
	"github.com/shiftline/workforce-service/internal/identity"
	"github.com/shiftline/workforce-service/internal/observability"
	"github.com/shiftline/workforce-service/internal/permissions"
	"github.com/shiftline/workforce-service/internal/persistence"
	"github.com/shiftline/workforce-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartAuditWorker(dispatcher, logger, metrics)

	if len(cfg.Auth.Fallback.RoleOverrides) > 0 {
		logger.Warn("fallback role overrides are ignored; roles are unknown when fallback is evaluated",
			zap.Int("overrides", len(cfg.Auth.Fallback.RoleOverrides)))
	}

	clock := auth.SystemClock{}
	store := identity.NewPostgresStore(pg.PoolHandle())
	overrideStore := identity.NewRedisOverrideStore(redis.Client, logger)
	resolver := permissions.NewResolver(logger)

	authMiddleware := auth.NewAuthMiddleware(cfg.Auth, auth.Deps{
		Validator:  auth.NewTokenValidator(cfg.Auth.JWTSecret, clock),
		TokenCache: cache.New[domain.TokenClaims](cfg.Auth.CacheTTL, cfg.Auth.CacheMaxEntries),
		UserCache:  cache.New[domain.UserIdentity](cfg.Auth.CacheTTL, cfg.Auth.CacheMaxEntries),
		Store:      store,
		Clock:      clock,
		Logger:     logger,
		Metrics:    metrics,
		Dispatcher: dispatcher,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Profile:        handlers.NewProfileHandler(resolver, overrideStore, logger),
		Admin:          handlers.NewAdminHandler(authMiddleware, metrics, dispatcher, clock),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
