package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/souqna/marketplace/internal/api/http"
	"github.com/souqna/marketplace/internal/api/http/handlers"
	"github.com/souqna/marketplace/internal/auth"
	"github.com/souqna/marketplace/internal/config"
	"github.com/souqna/marketplace/internal/events"
	"github.com/souqna/marketplace/internal/observability"
	"github.com/souqna/marketplace/internal/persistence"
	"github.com/souqna/marketplace/internal/ratelimit"
	"github.com/souqna/marketplace/internal/repository"
	"github.com/souqna/marketplace/internal/service"
	"github.com/souqna/marketplace/internal/worker"
)

const resetSweepInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Postgres.DSN == "" {
		log.Fatal("POSTGRES_DSN is required")
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

	readiness := map[string]handlers.Pinger{"postgres": pg}
	limiterStore, redis, err := newLimiterStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	if redis != nil {
		defer redis.Close()
		readiness["redis"] = redis
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	reportRepo := repository.NewReportRepository(pool)
	actionRepo := repository.NewModerationActionRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	blockRepo := repository.NewBlockRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(dispatcher, notifications, metrics)
	go worker.NewResetTokenSweeper(resetRepo, resetSweepInterval, logger).Run(ctx)

	settingsService := service.NewSettingsService(settingsRepo, cfg.Settings.CacheTTL)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
		Dispatcher:        dispatcher,
		Logger:            logger,
	})
	productService := service.NewProductService(service.ProductDependencies{
		ProductRepo: productRepo,
		UserRepo:    userRepo,
		BlockRepo:   blockRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	reportService := service.NewReportService(service.ReportDependencies{
		ReportRepo:  reportRepo,
		ActionRepo:  actionRepo,
		ProductRepo: productRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	blockService := service.NewBlockService(blockRepo, userRepo)
	userService := service.NewUserService(userRepo, logger)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.App.BodyLimitBytes,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Auth:           handlers.NewAuthHandler(authService, settingsService, cfg.App.Env != "production"),
		Products:       handlers.NewProductsHandler(productService, settingsService),
		Reports:        handlers.NewReportsHandler(reportService, settingsService),
		Blocks:         handlers.NewBlocksHandler(blockService),
		Settings:       handlers.NewSettingsHandler(settingsService),
		AdminUsers:     handlers.NewAdminUsersHandler(userService),
		AuthMiddleware: authMiddleware,
		GlobalLimiter:  ratelimit.New("global", limiterStore, cfg.RateLimit.GlobalLimit, cfg.RateLimit.GlobalWindow),
		AuthLimiter:    ratelimit.New("auth", limiterStore, cfg.RateLimit.AuthLimit, cfg.RateLimit.AuthWindow),
		ReportLimiter:  ratelimit.New("report", limiterStore, cfg.RateLimit.ReportLimit, cfg.RateLimit.ReportWindow),
		Metrics:        metrics,
		Logger:         logger,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

// newLimiterStore selects the shared Redis counters or the per-process map. Redis is
// only dialed when it backs the limiter, so it is only then part of readiness.
func newLimiterStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ratelimit.Store, *persistence.Redis, error) {
	if !cfg.RateLimit.UsesRedis() {
		logger.Info("rate limiter using in-memory store")
		return ratelimit.NewMemoryStore(), nil, nil
	}
	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("rate limiter using redis store")
	return ratelimit.NewRedisStore(redis.Client), redis, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
