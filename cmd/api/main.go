package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/crmkit/department-service/internal/api/http"
	"github.com/crmkit/department-service/internal/api/http/handlers"
	"github.com/crmkit/department-service/internal/auth"
	"github.com/crmkit/department-service/internal/config"
	"github.com/crmkit/department-service/internal/events"
	"github.com/crmkit/department-service/internal/observability"
	"github.com/crmkit/department-service/internal/persistence"
	"github.com/crmkit/department-service/internal/repository"
	"github.com/crmkit/department-service/internal/service"
	"github.com/crmkit/department-service/internal/worker"
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

	store, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongo", zap.Error(err))
	}
	defer store.Close(context.Background())

	if cfg.Mongo.EnsureIndexes {
		if err := persistence.EnsureIndexes(ctx, store, logger); err != nil {
			logger.Fatal("failed to ensure indexes", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	companyRepo := repository.NewCompanyRepository(store)
	userRepo := repository.NewUserRepository(store)
	entryRepo := repository.NewEntryRepository(store)
	settingsRepo := repository.NewSettingsRepository(store)
	notificationRepo := repository.NewNotificationRepository(store)

	dispatcher := events.NewInMemoryDispatcher()

	departmentService := service.NewDepartmentService(service.DepartmentDependencies{
		CompanyRepo: companyRepo,
		UserRepo:    userRepo,
		EntryRepo:   entryRepo,
		Dispatcher:  dispatcher,
	})
	settingsService := service.NewSettingsService(settingsRepo, redis, logger, cfg.Notification.SettingsCacheTTL())
	authService := service.NewAuthService(*cfg, userRepo)
	notificationService := service.NewNotificationService(dispatcher, notificationRepo, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store, redis)
	authHandler := handlers.NewAuthHandler(authService)
	departmentsHandler := handlers.NewDepartmentsHandler(departmentService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Auth:           authHandler,
		Departments:    departmentsHandler,
		Settings:       settingsHandler,
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
