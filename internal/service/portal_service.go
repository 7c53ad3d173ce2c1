package service

import (
	"errors"
	"strings"

	"github.com/dorkyWolfie/qr-generator/internal/models"
	"github.com/dorkyWolfie/qr-generator/internal/qrimg"
	"github.com/dorkyWolfie/qr-generator/internal/shortcode"

	"github.com/google/uuid"
	"github.com/teris-io/shortid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidSlug         = errors.New("slug must be 3-50 characters of lowercase letters, numbers and hyphens")
	ErrSlugTaken           = errors.New("slug is already taken")
	ErrInvalidSSID         = errors.New("network name must be 1-32 characters")
	ErrPasswordRequired    = errors.New("password is required for secured networks")
	ErrPasswordTooLong     = errors.New("password must be at most 63 characters")
	ErrInvalidSecurity     = errors.New("invalid security type")
	ErrInstructionsTooLong = errors.New("instructions must be at most 1000 characters")
	ErrPortalNotFound      = errors.New("portal not found")
)

// DefaultInstructions is shown on a portal page when the owner supplies none.
const DefaultInstructions = "Welcome! Please connect to our WiFi network using the credentials below."

// PortalStore is the persistence surface the portal service needs.
// Implemented by repository.PortalRepository.
type PortalStore interface {
	Create(portal *models.WiFiPortal) error
	GetActiveBySlug(slug string) (*models.WiFiPortal, error)
	SlugExists(slug string) (bool, error)
	GetByUserID(userID uuid.UUID) ([]*models.WiFiPortal, error)
	GetByPortalIDAndUser(portalID string, userID uuid.UUID) (*models.WiFiPortal, error)
	Save(portal *models.WiFiPortal) error
	Delete(portalID string, userID uuid.UUID) error
	IncrementVisits(portal *models.WiFiPortal) error
}

type PortalService struct {
	store   PortalStore
	qr      *qrimg.Compositor
	baseURL string
	log     *zap.Logger
}

func NewPortalService(store PortalStore, qr *qrimg.Compositor, baseURL string, log *zap.Logger) *PortalService {
	return &PortalService{
		store:   store,
		qr:      qr,
		baseURL: baseURL,
		log:     log,
	}
}

// PortalURL composes the public page URL for a slug.
func (s *PortalService) PortalURL(slug string) string {
	return s.baseURL + "/wifi/" + slug
}

type CreatePortalInput struct {
	Title        string
	Slug         string
	SSID         string
	Password     string
	Security     string
	Instructions string
}

// CreatePortal validates the WiFi settings, allocates the slug and persists
// the portal with a rendered QR of its public URL.
func (s *PortalService) CreatePortal(userID uuid.UUID, in CreatePortalInput) (*models.WiFiPortal, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || len(title) > 100 {
		return nil, ErrInvalidTitle
	}

	ssid := strings.TrimSpace(in.SSID)
	if ssid == "" || len(ssid) > 32 {
		return nil, ErrInvalidSSID
	}

	security := in.Security
	if security == "" {
		security = models.SecurityWPA2
	}
	if !models.IsValidSecurity(security) {
		return nil, ErrInvalidSecurity
	}
	if security != models.SecurityNoPass && strings.TrimSpace(in.Password) == "" {
		return nil, ErrPasswordRequired
	}
	if len(in.Password) > 63 {
		return nil, ErrPasswordTooLong
	}

	instructions := strings.TrimSpace(in.Instructions)
	if instructions == "" {
		instructions = DefaultInstructions
	}
	if len(instructions) > 1000 {
		return nil, ErrInstructionsTooLong
	}

	slug := shortcode.NormalizeSlug(in.Slug)
	if !shortcode.ValidSlug(slug) {
		return nil, ErrInvalidSlug
	}
	taken, err := s.store.SlugExists(slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}

	portalID, err := shortid.Generate()
	if err != nil {
		s.log.Error("Failed to generate portal ID", zap.Error(err))
		return nil, err
	}

	dataURL, err := s.qr.RenderDataURL(s.PortalURL(slug), qrimg.DefaultPortalSize, nil)
	if err != nil {
		s.log.Error("Failed to render portal QR image", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}

	portal := &models.WiFiPortal{
		UserID:       userID,
		PortalID:     portalID,
		Slug:         slug,
		Title:        title,
		SSID:         ssid,
		Password:     in.Password,
		Security:     security,
		Instructions: instructions,
		QRCodeData:   dataURL,
		IsActive:     true,
	}

	if err := s.store.Create(portal); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// The advisory check above raced a concurrent create; the
			// constraint is the authority and the caller sees one conflict.
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return portal, nil
}

// CheckSlugAvailability is advisory only, same contract as link codes.
func (s *PortalService) CheckSlugAvailability(slug string) (bool, error) {
	slug = shortcode.NormalizeSlug(slug)
	if !shortcode.ValidSlug(slug) {
		return false, ErrInvalidSlug
	}
	taken, err := s.store.SlugExists(slug)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// ResolvePublic returns an active portal for its public page and records the
// visit. A counter persist failure is logged and swallowed.
func (s *PortalService) ResolvePublic(slug string) (*models.WiFiPortal, error) {
	portal, err := s.store.GetActiveBySlug(shortcode.NormalizeSlug(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPortalNotFound
		}
		return nil, err
	}

	portal.Visits++
	if err := s.store.IncrementVisits(portal); err != nil {
		s.log.Error("Failed to record portal visit", zap.String("slug", slug), zap.Error(err))
	}

	return portal, nil
}

func (s *PortalService) GetPortalsUser(userID uuid.UUID) ([]*models.WiFiPortal, error) {
	portals, err := s.store.GetByUserID(userID)
	if err != nil {
		s.log.Warn("Failed to get portals for user", zap.String("userID", userID.String()), zap.Error(err))
		return nil, err
	}
	return portals, nil
}

func (s *PortalService) GetPortal(portalID string, userID uuid.UUID) (*models.WiFiPortal, error) {
	portal, err := s.store.GetByPortalIDAndUser(portalID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPortalNotFound
		}
		return nil, err
	}
	return portal, nil
}

type UpdatePortalInput struct {
	Title        *string
	SSID         *string
	Password     *string
	Security     *string
	Instructions *string
	IsActive     *bool
}

// UpdatePortal applies the given fields. The slug is immutable, so the
// rendered QR never changes after creation.
func (s *PortalService) UpdatePortal(portalID string, userID uuid.UUID, in UpdatePortalInput) (*models.WiFiPortal, error) {
	portal, err := s.store.GetByPortalIDAndUser(portalID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPortalNotFound
		}
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" || len(title) > 100 {
			return nil, ErrInvalidTitle
		}
		portal.Title = title
	}
	if in.SSID != nil {
		ssid := strings.TrimSpace(*in.SSID)
		if ssid == "" || len(ssid) > 32 {
			return nil, ErrInvalidSSID
		}
		portal.SSID = ssid
	}
	if in.Security != nil {
		if !models.IsValidSecurity(*in.Security) {
			return nil, ErrInvalidSecurity
		}
		portal.Security = *in.Security
	}
	if in.Password != nil {
		if len(*in.Password) > 63 {
			return nil, ErrPasswordTooLong
		}
		portal.Password = *in.Password
	}
	// An update can change security and password independently; the
	// invariant holds over the final combination.
	if portal.Security != models.SecurityNoPass && strings.TrimSpace(portal.Password) == "" {
		return nil, ErrPasswordRequired
	}
	if in.Instructions != nil {
		instructions := strings.TrimSpace(*in.Instructions)
		if len(instructions) > 1000 {
			return nil, ErrInstructionsTooLong
		}
		if instructions == "" {
			instructions = DefaultInstructions
		}
		portal.Instructions = instructions
	}
	if in.IsActive != nil {
		portal.IsActive = *in.IsActive
	}

	if err := s.store.Save(portal); err != nil {
		return nil, err
	}
	return portal, nil
}

func (s *PortalService) DeletePortal(portalID string, userID uuid.UUID) error {
	if _, err := s.store.GetByPortalIDAndUser(portalID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPortalNotFound
		}
		return err
	}
	return s.store.Delete(portalID, userID)
}
