package storage

import (
	"github.com/dorkyWolfie/qr-generator/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB, log *zap.Logger) {
	if err := db.AutoMigrate(
		&models.User{},
		&models.ShortLink{},
		&models.WiFiPortal{},
	); err != nil {
		log.Fatal("Failed to run database migration", zap.Error(err))
	}
	log.Info("Database migration completed")
}
