package service

import (
	"errors"
	"regexp"
	"unicode"

	"github.com/dorkyWolfie/qr-generator/config"
	"github.com/dorkyWolfie/qr-generator/internal/jwt"
	"github.com/dorkyWolfie/qr-generator/internal/lockout"
	"github.com/dorkyWolfie/qr-generator/internal/models"
	"github.com/dorkyWolfie/qr-generator/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidUsername = errors.New("username must be 3-30 characters of letters, numbers, hyphens or underscores")
	ErrWeakPassword    = errors.New("password must be at least 8 characters and contain uppercase, lowercase, number and special character")
	ErrInvalidToken    = errors.New("invalid token")
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{3,30}$`)

type AuthService struct {
	repo  *repository.UserRepository
	guard *lockout.Guard
	Cfg   *config.Config
	log   *zap.Logger
}

func NewAuthService(repo *repository.UserRepository, guard *lockout.Guard, cfg *config.Config, log *zap.Logger) *AuthService {
	return &AuthService{
		repo:  repo,
		guard: guard,
		Cfg:   cfg,
		log:   log,
	}
}

func (s *AuthService) Register(username, email, password string) (*models.User, error) {
	if !usernameRe.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if !strongPassword(password) {
		return nil, ErrWeakPassword
	}
	if _, err := s.repo.FindByEmail(email); err == nil {
		return nil, ErrUserExists
	}
	if _, err := s.repo.FindByUsername(username); err == nil {
		return nil, ErrUserExists
	}

	hash, err := lockout.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.repo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

// Login verifies credentials through the lockout guard and issues a token
// pair. While the account is locked the guard short-circuits and the error
// reveals only the remaining lock time.
func (s *AuthService) Login(email, password string) (access, refresh string, err error) {
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		return "", "", ErrUserNotFound
	}

	if err := s.guard.Verify(user.ID, password); err != nil {
		return "", "", err
	}

	access, err = jwt.GenerateAccessToken(user.ID.String(), &s.Cfg.JWT)
	if err != nil {
		return "", "", err
	}
	refresh, err = jwt.GenerateRefreshToken(user.ID.String(), &s.Cfg.JWT)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// VerifyCredentials exposes the guard result for an account without issuing
// tokens: nil, lockout.ErrAccountLocked or lockout.ErrMismatch.
func (s *AuthService) VerifyCredentials(accountID uuid.UUID, candidate string) error {
	return s.guard.Verify(accountID, candidate)
}

func (s *AuthService) Refresh(refreshToken string) (access, refresh string, err error) {
	claims, err := jwt.ParseRefreshToken(refreshToken, s.Cfg.JWT.Refresh)
	if err != nil {
		return "", "", ErrInvalidToken
	}

	access, err = jwt.GenerateAccessToken(claims.UserID, &s.Cfg.JWT)
	if err != nil {
		return "", "", err
	}
	refresh, err = jwt.GenerateRefreshToken(claims.UserID, &s.Cfg.JWT)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *AuthService) Profile(userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// strongPassword requires at least 8 characters with an upper, a lower, a
// digit and a symbol.
func strongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}
