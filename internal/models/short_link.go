package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShortLink struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ShortCode string    `gorm:"type:text;unique;not null"`
	Title     string    `gorm:"type:text;not null"`
	TargetURL string    `gorm:"type:text;not null"`
	// QRCodeData holds the rendered image as a base64 PNG data URL. It is a
	// derived artifact and is regenerated whenever TargetURL changes.
	QRCodeData string `gorm:"type:text;not null"`
	LogoPath   string `gorm:"type:text"`
	Clicks     int64  `gorm:"not null;default:0"`
	IsActive   bool   `gorm:"not null;default:true"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (m *ShortLink) BeforeCreate(tx *gorm.DB) (err error) {
	m.ID = uuid.New()
	return
}
