package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WiFi security modes accepted for a portal. "nopass" is an open network and
// is the only mode that allows an empty password.
const (
	SecurityWPA    = "WPA"
	SecurityWPA2   = "WPA2"
	SecurityWPA3   = "WPA3"
	SecurityWEP    = "WEP"
	SecurityNoPass = "nopass"
)

func IsValidSecurity(s string) bool {
	switch s {
	case SecurityWPA, SecurityWPA2, SecurityWPA3, SecurityWEP, SecurityNoPass:
		return true
	}
	return false
}

type WiFiPortal struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index"`
	PortalID string    `gorm:"type:text;unique;not null"`
	Slug     string    `gorm:"type:text;unique;not null"`
	Title    string    `gorm:"type:text;not null"`
	SSID     string    `gorm:"type:text;not null"`
	Password string    `gorm:"type:text;not null;default:''"`
	Security string    `gorm:"type:text;not null;default:'WPA2'"`
	Instructions string `gorm:"type:text;not null"`
	// QRCodeData holds the rendered portal QR as a base64 PNG data URL.
	QRCodeData string    `gorm:"type:text;not null"`
	Visits     int64     `gorm:"not null;default:0"`
	IsActive   bool      `gorm:"not null;default:true"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (m *WiFiPortal) BeforeCreate(tx *gorm.DB) (err error) {
	m.ID = uuid.New()
	return
}
