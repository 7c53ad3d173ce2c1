package repository

import (
	"github.com/dorkyWolfie/qr-generator/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PortalRepository struct {
	db *gorm.DB
}

func NewPortalRepository(db *gorm.DB) *PortalRepository {
	return &PortalRepository{
		db: db,
	}
}

// Create inserts the portal. The unique constraint on slug is the source of
// truth for slug uniqueness.
func (r *PortalRepository) Create(portal *models.WiFiPortal) error {
	return r.db.Create(portal).Error
}

func (r *PortalRepository) GetActiveBySlug(slug string) (*models.WiFiPortal, error) {
	var portal models.WiFiPortal
	if err := r.db.Where("slug = ? AND is_active = ?", slug, true).First(&portal).Error; err != nil {
		return nil, err
	}
	return &portal, nil
}

// SlugExists is the advisory availability read.
func (r *PortalRepository) SlugExists(slug string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.WiFiPortal{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PortalRepository) GetByUserID(userID uuid.UUID) ([]*models.WiFiPortal, error) {
	var portals []*models.WiFiPortal
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&portals).Error; err != nil {
		return nil, err
	}
	return portals, nil
}

func (r *PortalRepository) GetByPortalIDAndUser(portalID string, userID uuid.UUID) (*models.WiFiPortal, error) {
	var portal models.WiFiPortal
	if err := r.db.Where("portal_id = ? AND user_id = ?", portalID, userID).First(&portal).Error; err != nil {
		return nil, err
	}
	return &portal, nil
}

func (r *PortalRepository) Save(portal *models.WiFiPortal) error {
	return r.db.Save(portal).Error
}

func (r *PortalRepository) Delete(portalID string, userID uuid.UUID) error {
	return r.db.Where("portal_id = ? AND user_id = ?", portalID, userID).Delete(&models.WiFiPortal{}).Error
}

// IncrementVisits persists the visit count already incremented on the fetched
// record. Same accepted read-increment-write tradeoff as link clicks.
func (r *PortalRepository) IncrementVisits(portal *models.WiFiPortal) error {
	return r.db.Model(portal).UpdateColumn("visits", portal.Visits).Error
}
