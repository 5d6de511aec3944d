package main

import (
	"fmt"
	"time"

	"taskmanager/configs"
	"taskmanager/internal/api"
	"taskmanager/internal/api/handlers"
	"taskmanager/internal/cache"
	"taskmanager/internal/middleware"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"
	"taskmanager/pkg/database"
	"taskmanager/pkg/logger"
	"taskmanager/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

func main() {
	logger.InitLoggers()
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	cfg := configs.LoadConfig()

	db := database.ConnectDB(cfg)
	defer db.Close()
	logger.SystemLogger.Info("Database Connected")

	repository.CreateTableIfNotExists(db)

	// Redis is optional: when it is not configured or not reachable the
	// service degrades to store-only operation behind the no-op cache.
	var taskCache cache.TaskCache = cache.NewNoop()
	if cfg.CacheConfigured() {
		client, err := database.ConnectRedis(cfg)
		if err != nil {
			logger.SystemLogger.Warn("Redis unavailable, running without cache", zap.Error(err))
		} else {
			defer client.Close()
			taskCache = cache.NewRedisCache(client)
			logger.SystemLogger.Info("Redis Connected")
		}
	} else {
		logger.SystemLogger.Info("No Redis configured, running without cache")
	}

	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	taskService := service.NewTaskService(taskRepo, taskCache, logger.AuditLogger)

	app := fiber.New()

	app.Use(middleware.ErrorHandler(logger.RequestLogger, logger.ErrorLogger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	api.RegisterRoutes(app, api.Deps{
		Tasks:   handlers.NewTaskHandler(taskService, logger.ErrorLogger),
		Auth:    handlers.NewAuthHandler(userRepo, []byte(cfg.SecretKey), logger.SecurityLogger),
		Health:  handlers.NewHealthHandler(db, taskCache, logger.ErrorLogger),
		Metrics: metrics.Handler(taskRepo),
		Secret:  []byte(cfg.SecretKey),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
