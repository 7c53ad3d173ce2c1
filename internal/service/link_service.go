package service

import (
	"errors"
	"strings"

	"github.com/dorkyWolfie/qr-generator/internal/logostore"
	"github.com/dorkyWolfie/qr-generator/internal/models"
	"github.com/dorkyWolfie/qr-generator/internal/qrimg"
	"github.com/dorkyWolfie/qr-generator/internal/shortcode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidTitle       = errors.New("title must be 1-100 characters")
	ErrInvalidCode        = errors.New("short code must be 3-20 characters of letters, numbers, hyphens or underscores")
	ErrCodeTaken          = errors.New("short code is already taken")
	ErrAllocatorExhausted = errors.New("could not allocate a unique short code")
	ErrLinkNotFound       = errors.New("short link not found")
)

// generateAttempts bounds retries when a generated code loses the insert
// race. Collisions on an 8-char random code are rare; three tries is plenty.
const generateAttempts = 3

// LinkStore is the persistence surface the link service needs. Implemented
// by repository.ShortLinkRepository.
type LinkStore interface {
	Create(link *models.ShortLink) error
	GetActiveByCode(code string) (*models.ShortLink, error)
	CodeExists(code string) (bool, error)
	GetByUserID(userID uuid.UUID) ([]*models.ShortLink, error)
	GetByIDAndUser(id, userID uuid.UUID) (*models.ShortLink, error)
	Save(link *models.ShortLink) error
	Delete(id, userID uuid.UUID) error
	IncrementClicks(link *models.ShortLink) error
}

type URLValidator func(rawURL string) error

type LinkService struct {
	store    LinkStore
	logos    *logostore.Store
	qr       *qrimg.Compositor
	validate URLValidator
	baseURL  string
	log      *zap.Logger
}

func NewLinkService(store LinkStore, logos *logostore.Store, qr *qrimg.Compositor, validate URLValidator, baseURL string, log *zap.Logger) *LinkService {
	return &LinkService{
		store:    store,
		logos:    logos,
		qr:       qr,
		validate: validate,
		baseURL:  baseURL,
		log:      log,
	}
}

// RedirectURL composes the user-facing redirect URL for a code.
func (s *LinkService) RedirectURL(code string) string {
	return s.baseURL + "/r/" + code
}

type CreateLinkInput struct {
	Title         string
	TargetURL     string
	CandidateCode string
	Logo          []byte
	LogoExt       string
}

// CreateShortLink allocates a code, renders the QR image and persists the
// record. A caller-supplied code must pass format validation and not be
// taken; a generated code is a candidate only, retried on insert conflict.
func (s *LinkService) CreateShortLink(userID uuid.UUID, in CreateLinkInput) (*models.ShortLink, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || len(title) > 100 {
		return nil, ErrInvalidTitle
	}
	if err := s.validate(in.TargetURL); err != nil {
		s.log.Warn("Rejected redirect target at creation",
			zap.String("targetUrl", in.TargetURL), zap.Error(err))
		return nil, err
	}

	logoPath := ""
	if len(in.Logo) > 0 {
		path, err := s.logos.Save(in.LogoExt, in.Logo)
		if err != nil {
			s.log.Error("Failed to store logo upload", zap.Error(err))
			return nil, err
		}
		logoPath = path
	}

	link := &models.ShortLink{
		UserID:    userID,
		Title:     title,
		TargetURL: strings.TrimSpace(in.TargetURL),
		LogoPath:  logoPath,
		IsActive:  true,
	}

	var err error
	if in.CandidateCode != "" {
		err = s.createWithCandidate(link, in.CandidateCode, in.Logo)
	} else {
		err = s.createWithGenerated(link, in.Logo)
	}
	if err != nil {
		// The record never landed, so the stored logo is already orphaned.
		s.logos.Delete(logoPath)
		return nil, err
	}
	return link, nil
}

func (s *LinkService) createWithCandidate(link *models.ShortLink, candidate string, logo []byte) error {
	if !shortcode.ValidCode(candidate) {
		return ErrInvalidCode
	}
	// Fast feedback only. The unique constraint decides at insert time.
	taken, err := s.store.CodeExists(candidate)
	if err != nil {
		return err
	}
	if taken {
		return ErrCodeTaken
	}

	link.ShortCode = candidate
	if err := s.renderInto(link, logo); err != nil {
		return err
	}
	if err := s.store.Create(link); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrCodeTaken
		}
		return err
	}
	return nil
}

func (s *LinkService) createWithGenerated(link *models.ShortLink, logo []byte) error {
	for attempt := 0; attempt < generateAttempts; attempt++ {
		link.ShortCode = shortcode.Generate()
		if err := s.renderInto(link, logo); err != nil {
			return err
		}
		err := s.store.Create(link)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		s.log.Warn("Generated short code collided, retrying",
			zap.String("shortCode", link.ShortCode), zap.Int("attempt", attempt+1))
	}
	return ErrAllocatorExhausted
}

func (s *LinkService) renderInto(link *models.ShortLink, logo []byte) error {
	dataURL, err := s.qr.RenderDataURL(s.RedirectURL(link.ShortCode), qrimg.DefaultLinkSize, logo)
	if err != nil {
		s.log.Error("Failed to render QR image", zap.String("shortCode", link.ShortCode), zap.Error(err))
		return err
	}
	link.QRCodeData = dataURL
	return nil
}

// Resolve returns the redirect target for an active code and records the
// click. A counter persist failure is logged and swallowed: the redirect
// itself must never fail on analytics.
func (s *LinkService) Resolve(code string) (string, error) {
	link, err := s.store.GetActiveByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrLinkNotFound
		}
		return "", err
	}

	// Re-validate at redirect time: the blocklists may have grown since the
	// link was created, and a stored target must never silently redirect.
	if err := s.validate(link.TargetURL); err != nil {
		s.log.Warn("Blocked redirect for stored target",
			zap.String("shortCode", code), zap.String("targetUrl", link.TargetURL), zap.Error(err))
		return "", err
	}

	link.Clicks++
	if err := s.store.IncrementClicks(link); err != nil {
		s.log.Error("Failed to record click", zap.String("shortCode", code), zap.Error(err))
	}

	return link.TargetURL, nil
}

// CheckAvailability is advisory: a true result does not guarantee a later
// create succeeds, because another create can win the race in between.
func (s *LinkService) CheckAvailability(code string) (bool, error) {
	if !shortcode.ValidCode(code) {
		return false, ErrInvalidCode
	}
	taken, err := s.store.CodeExists(code)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (s *LinkService) GetLinksUser(userID uuid.UUID) ([]*models.ShortLink, error) {
	links, err := s.store.GetByUserID(userID)
	if err != nil {
		s.log.Warn("Failed to get short links for user", zap.String("userID", userID.String()), zap.Error(err))
		return nil, err
	}
	return links, nil
}

type UpdateLinkInput struct {
	Title     *string
	TargetURL *string
	IsActive  *bool
}

// UpdateShortLink applies the given fields. A target change re-validates the
// URL and regenerates the QR image, reusing the stored logo when present.
func (s *LinkService) UpdateShortLink(id, userID uuid.UUID, in UpdateLinkInput) (*models.ShortLink, error) {
	link, err := s.store.GetByIDAndUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" || len(title) > 100 {
			return nil, ErrInvalidTitle
		}
		link.Title = title
	}
	if in.TargetURL != nil && strings.TrimSpace(*in.TargetURL) != link.TargetURL {
		target := strings.TrimSpace(*in.TargetURL)
		if err := s.validate(target); err != nil {
			s.log.Warn("Rejected redirect target at update",
				zap.String("targetUrl", target), zap.Error(err))
			return nil, err
		}
		link.TargetURL = target

		var logo []byte
		if link.LogoPath != "" {
			// A missing or corrupt logo file degrades to a plain QR.
			logo, _ = s.logos.Read(link.LogoPath)
		}
		if err := s.renderInto(link, logo); err != nil {
			return nil, err
		}
	}
	if in.IsActive != nil {
		link.IsActive = *in.IsActive
	}

	if err := s.store.Save(link); err != nil {
		return nil, err
	}
	return link, nil
}

// DeleteShortLink removes the record and its owned logo asset.
func (s *LinkService) DeleteShortLink(id, userID uuid.UUID) error {
	link, err := s.store.GetByIDAndUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLinkNotFound
		}
		return err
	}
	if err := s.store.Delete(id, userID); err != nil {
		return err
	}
	s.logos.Delete(link.LogoPath)
	return nil
}
