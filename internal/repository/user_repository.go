package repository

import (
	"github.com/dorkyWolfie/qr-generator/internal/lockout"
	"github.com/dorkyWolfie/qr-generator/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// LockoutState implements lockout.Store.
func (r *UserRepository) LockoutState(id uuid.UUID) (lockout.Account, error) {
	user, err := r.FindByID(id)
	if err != nil {
		return lockout.Account{}, err
	}
	return lockout.Account{
		PasswordHash:   user.PasswordHash,
		FailedAttempts: user.FailedLoginAttempts,
		Locked:         user.AccountLocked,
		LockUntil:      user.LockUntil,
	}, nil
}

// SaveLockoutState implements lockout.Store. All fields are written in a
// single UPDATE so a transition is never half-applied.
func (r *UserRepository) SaveLockoutState(id uuid.UUID, s lockout.State) error {
	updates := map[string]interface{}{
		"failed_login_attempts": s.FailedAttempts,
		"account_locked":        s.Locked,
		"lock_until":            s.LockUntil,
	}
	if s.LastLoginAt != nil {
		updates["last_login_at"] = s.LastLoginAt
	}
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}
