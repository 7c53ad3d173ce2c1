package repository

import (
	"github.com/dorkyWolfie/qr-generator/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShortLinkRepository struct {
	db *gorm.DB
}

func NewShortLinkRepository(db *gorm.DB) *ShortLinkRepository {
	return &ShortLinkRepository{
		db: db,
	}
}

// Create inserts the link. The unique constraint on short_code is the source
// of truth for code uniqueness; callers translate gorm.ErrDuplicatedKey into
// their conflict error.
func (r *ShortLinkRepository) Create(link *models.ShortLink) error {
	return r.db.Create(link).Error
}

func (r *ShortLinkRepository) GetActiveByCode(code string) (*models.ShortLink, error) {
	var link models.ShortLink
	if err := r.db.Where("short_code = ? AND is_active = ?", code, true).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// CodeExists is the advisory availability read. A false result does not
// guarantee a later insert succeeds.
func (r *ShortLinkRepository) CodeExists(code string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.ShortLink{}).Where("short_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ShortLinkRepository) GetByUserID(userID uuid.UUID) ([]*models.ShortLink, error) {
	var links []*models.ShortLink
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *ShortLinkRepository) GetByIDAndUser(id, userID uuid.UUID) (*models.ShortLink, error) {
	var link models.ShortLink
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *ShortLinkRepository) Save(link *models.ShortLink) error {
	return r.db.Save(link).Error
}

func (r *ShortLinkRepository) Delete(id, userID uuid.UUID) error {
	return r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.ShortLink{}).Error
}

// AllLogoPaths lists every logo path still referenced by a link. Used by the
// maintenance sweep to find orphaned files.
func (r *ShortLinkRepository) AllLogoPaths() ([]string, error) {
	var paths []string
	err := r.db.Model(&models.ShortLink{}).
		Where("logo_path <> ''").
		Pluck("logo_path", &paths).Error
	return paths, err
}

// IncrementClicks persists the click count already incremented on the fetched
// record. The read-increment-write sequence can lose updates under concurrent
// redirects; the counter is informational analytics, so this is accepted.
// Switching the body to gorm.Expr("clicks + 1") makes it atomic.
func (r *ShortLinkRepository) IncrementClicks(link *models.ShortLink) error {
	return r.db.Model(link).UpdateColumn("clicks", link.Clicks).Error
}
