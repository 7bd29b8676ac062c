package main

import (
	"os"
	"os/signal"
	"syscall"

	"quest-alumni/internal/adapters/cache"
	"quest-alumni/internal/adapters/http/middleware"
	"quest-alumni/internal/adapters/http/routes"
	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/adapters/storage"
	"quest-alumni/internal/config"
	"quest-alumni/internal/core/services"
	"quest-alumni/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	_ "quest-alumni/docs" // Swagger docs
)

// @title Quest Alumni API
// @version 1.0
// @description Quest Foundation alumni network and Quest Care loan API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@questfoundation.org

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("❌ Failed to load configuration", zap.Error(err))
	}

	log := logger.New(cfg.LogLevel, cfg.AppMode)
	defer log.Sync()
	zap.ReplaceGlobals(log)
	log.Info("✅ Configuration loaded", zap.String("mode", cfg.AppMode))

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal("❌ Failed to connect to database", zap.Error(err))
	}
	defer config.CloseDatabase()

	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("❌ Failed to auto migrate", zap.Error(err))
	}
	log.Info("✅ Database migration completed")

	if err := config.NewSeeder(db, cfg.Seed).Run(); err != nil {
		log.Warn("⚠️ Failed to seed data", zap.Error(err))
	}

	opts := routes.Options{}

	blobs, err := storage.NewS3BlobStore(cfg.S3)
	if err != nil {
		log.Fatal("❌ Failed to configure object storage", zap.Error(err))
	}
	if blobs != nil {
		opts.Blobs = blobs
	} else {
		log.Warn("⚠️ S3_BUCKET not set, photo and template uploads are disabled")
	}

	redisStorage, err := cache.NewRedisStorage(cfg.Redis)
	if err != nil {
		log.Fatal("❌ Failed to connect to redis", zap.Error(err))
	}
	if redisStorage != nil {
		defer redisStorage.Close()
		opts.LimitStorage = redisStorage
		opts.Cache = redisStorage
	}

	maintenance := services.NewMaintenanceService(db, cfg.Cron)
	if err := maintenance.Start(); err != nil {
		log.Fatal("❌ Failed to start maintenance jobs", zap.Error(err))
	}
	defer maintenance.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "Quest Alumni API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    4 * 1024 * 1024,
	})

	middleware.Setup(app, cfg, opts.LimitStorage)
	routes.Setup(app, db, cfg, opts)

	go gracefulShutdown(app)

	log.Info("🚀 Server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("❌ Server stopped with error", zap.Error(err))
	}
}

// gracefulShutdown stops the server on SIGINT or SIGTERM
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		zap.L().Error("❌ Error during shutdown", zap.Error(err))
	}
	zap.L().Info("✅ Server stopped gracefully")
}
