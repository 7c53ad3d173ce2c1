package main

import (
	"context"
	"os"

	"github.com/dorkyWolfie/qr-generator/config"
	"github.com/dorkyWolfie/qr-generator/internal/handler"
	"github.com/dorkyWolfie/qr-generator/internal/lockout"
	"github.com/dorkyWolfie/qr-generator/internal/logostore"
	"github.com/dorkyWolfie/qr-generator/internal/maintenance"
	"github.com/dorkyWolfie/qr-generator/internal/qrimg"
	"github.com/dorkyWolfie/qr-generator/internal/repository"
	"github.com/dorkyWolfie/qr-generator/internal/router"
	"github.com/dorkyWolfie/qr-generator/internal/security"
	"github.com/dorkyWolfie/qr-generator/internal/service"
	"github.com/dorkyWolfie/qr-generator/internal/storage"
	"github.com/dorkyWolfie/qr-generator/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)

	db := storage.ConnectDB(&cfg.DB, log)
	if db == nil {
		log.Fatal("Failed to connect to database")
	}
	defer storage.CloseDB(db, log)

	storage.Migrate(db, log)

	logos, err := logostore.NewStore(cfg.Server.UploadDir, log)
	if err != nil {
		log.Fatal("Failed to initialize logo store", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	linkRepo := repository.NewShortLinkRepository(db)
	portalRepo := repository.NewPortalRepository(db)

	guard := lockout.NewGuard(userRepo, log, cfg.Lockout.MaxAttempts, cfg.Lockout.LockDuration)
	compositor := qrimg.NewCompositor(log)
	validate := func(rawURL string) error {
		return security.ValidateRedirectURL(rawURL, cfg.Server.Production)
	}

	authService := service.NewAuthService(userRepo, guard, cfg, log)
	linkService := service.NewLinkService(linkRepo, logos, compositor, validate, cfg.Server.BaseURL, log)
	portalService := service.NewPortalService(portalRepo, compositor, cfg.Server.BaseURL, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := maintenance.NewScheduler(log, linkRepo, logos)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start maintenance scheduler", zap.Error(err))
	}

	r := router.Router(cfg,
		handler.NewUserHandler(authService),
		handler.NewLinkHandler(linkService),
		handler.NewPortalHandler(portalService),
	)

	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}
