package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/DiogoBrazil/medimage-api/internal/api/http"
	"github.com/DiogoBrazil/medimage-api/internal/api/http/handlers"
	"github.com/DiogoBrazil/medimage-api/internal/auth"
	"github.com/DiogoBrazil/medimage-api/internal/config"
	"github.com/DiogoBrazil/medimage-api/internal/events"
	"github.com/DiogoBrazil/medimage-api/internal/inference"
	"github.com/DiogoBrazil/medimage-api/internal/observability"
	"github.com/DiogoBrazil/medimage-api/internal/persistence"
	"github.com/DiogoBrazil/medimage-api/internal/repository"
	"github.com/DiogoBrazil/medimage-api/internal/service"
	"github.com/DiogoBrazil/medimage-api/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool)
	healthUnitRepo := repository.NewHealthUnitRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	codec := auth.NewTokenCodec(cfg.Auth.SecretKey, cfg.Auth.TokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(cfg.Auth, codec)

	userService := service.NewUserService(cfg, userRepo, codec, dispatcher, logger)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, userRepo)
	healthUnitService := service.NewHealthUnitService(healthUnitRepo, dispatcher)
	attendanceService := service.NewAttendanceService(attendanceRepo, healthUnitRepo, dispatcher)
	predictionService := service.NewPredictionService(
		inference.NewClient(cfg.Inference),
		redis.Client,
		cfg.Inference.CacheTTLMin,
		dispatcher,
		metrics,
		logger,
	)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(userService),
		Subscriptions:  handlers.NewSubscriptionsHandler(subscriptionService),
		HealthUnits:    handlers.NewHealthUnitsHandler(healthUnitService),
		Attendances:    handlers.NewAttendancesHandler(attendanceService),
		Predictions:    handlers.NewPredictionsHandler(predictionService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
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
