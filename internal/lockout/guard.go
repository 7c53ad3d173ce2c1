package lockout

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is used for all credential hashes. Cost 12 keeps a single
// verification slow enough to resist offline brute force.
const BcryptCost = 12

var (
	ErrAccountLocked   = errors.New("account is temporarily locked")
	ErrMismatch        = errors.New("invalid credentials")
	ErrAccountNotFound = errors.New("account not found")
)

// LockedError carries the lock deadline so callers can report remaining time
// without revealing whether the supplied password was correct.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account is temporarily locked until %s", e.Until.Format(time.RFC3339))
}

func (e *LockedError) Unwrap() error { return ErrAccountLocked }

// Account is the lockout-relevant snapshot of a stored account.
type Account struct {
	PasswordHash   string
	FailedAttempts int
	Locked         bool
	LockUntil      *time.Time
}

// State is the transition written back after a verification attempt.
type State struct {
	FailedAttempts int
	Locked         bool
	LockUntil      *time.Time
	LastLoginAt    *time.Time
}

// Store persists lockout state. The write must replace all four fields in one
// statement so a transition is never half-applied.
type Store interface {
	LockoutState(id uuid.UUID) (Account, error)
	SaveLockoutState(id uuid.UUID, s State) error
}

// Guard gates credential verification behind the per-account lockout state
// machine: failures accumulate, the attempt that reaches the threshold locks
// the account for the configured window, and a locked account rejects every
// attempt until the window passes. Expiry is evaluated lazily on the next
// attempt; nothing unlocks an account in the background.
type Guard struct {
	store        Store
	log          *zap.Logger
	maxAttempts  int
	lockDuration time.Duration

	// now is swapped in tests to step through the lock window.
	now func() time.Time

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewGuard(store Store, log *zap.Logger, maxAttempts int, lockDuration time.Duration) *Guard {
	return &Guard{
		store:        store,
		log:          log,
		maxAttempts:  maxAttempts,
		lockDuration: lockDuration,
		now:          time.Now,
		locks:        make(map[uuid.UUID]*sync.Mutex),
	}
}

// Verify checks candidate against the stored hash for the account, applying
// the lockout transition that the outcome requires. It returns nil on
// success, ErrMismatch on a wrong credential, and a *LockedError (matching
// ErrAccountLocked) while the account is locked. Updates for one account are
// serialized so concurrent failures never increment from the same stale
// counter.
func (g *Guard) Verify(id uuid.UUID, candidate string) error {
	mu := g.accountMutex(id)
	mu.Lock()
	defer mu.Unlock()

	acct, err := g.store.LockoutState(id)
	if err != nil {
		return ErrAccountNotFound
	}

	now := g.now()

	if acct.Locked && acct.LockUntil != nil && now.Before(*acct.LockUntil) {
		// Short-circuit: the candidate is not compared at all, so a locked
		// response carries no credential-guessing feedback.
		return &LockedError{Until: *acct.LockUntil}
	}

	if acct.Locked {
		// Window has passed: the attempt is evaluated fresh.
		acct.Locked = false
		acct.LockUntil = nil
		acct.FailedAttempts = 0
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(candidate)) != nil {
		acct.FailedAttempts++
		state := State{FailedAttempts: acct.FailedAttempts}
		if acct.FailedAttempts >= g.maxAttempts {
			until := now.Add(g.lockDuration)
			state.Locked = true
			state.LockUntil = &until
			g.log.Warn("Account locked after repeated failed logins",
				zap.String("accountID", id.String()),
				zap.Int("attempts", acct.FailedAttempts),
				zap.Time("until", until))
		}
		if err := g.store.SaveLockoutState(id, state); err != nil {
			g.log.Error("Failed to persist lockout state", zap.String("accountID", id.String()), zap.Error(err))
		}
		return ErrMismatch
	}

	state := State{FailedAttempts: 0, LastLoginAt: &now}
	if err := g.store.SaveLockoutState(id, state); err != nil {
		g.log.Error("Failed to persist lockout state", zap.String("accountID", id.String()), zap.Error(err))
	}
	return nil
}

func (g *Guard) accountMutex(id uuid.UUID) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	mu, ok := g.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		g.locks[id] = mu
	}
	return mu
}

// HashPassword hashes a plaintext credential at the guard's fixed cost. Used
// at registration and password change; the plaintext is never stored.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
