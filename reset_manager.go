package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// DefaultResetTokenTTL is how long a reset token stays valid.
var DefaultResetTokenTTL = 30 * time.Minute

const resetTokenBytes = 32

// ResetTokenManager issues and consumes single-use password reset tokens.
// Issue supersedes any live token for the user; Consume relies on the
// store's conditional update so concurrent attempts on the same token
// resolve to exactly one winner.
type ResetTokenManager struct {
	store  ResetTokenStore
	ttl    time.Duration
	now    func() time.Time
	logger Logger
}

type ResetTokenManagerOption func(*ResetTokenManager)

// WithResetTokenTTL overrides the token lifetime.
func WithResetTokenTTL(ttl time.Duration) ResetTokenManagerOption {
	return func(m *ResetTokenManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithResetTokenClock injects a custom clock (useful for tests).
func WithResetTokenClock(clock func() time.Time) ResetTokenManagerOption {
	return func(m *ResetTokenManager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithResetTokenLogger overrides the logger.
func WithResetTokenLogger(logger Logger) ResetTokenManagerOption {
	return func(m *ResetTokenManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewResetTokenManager(store ResetTokenStore, opts ...ResetTokenManagerOption) *ResetTokenManager {
	m := &ResetTokenManager{
		store:  store,
		ttl:    DefaultResetTokenTTL,
		now:    time.Now,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Issue creates a fresh reset token for the user. Any live token the user
// still has is marked consumed first, keeping the one-live-token-per-user
// invariant.
func (m *ResetTokenManager) Issue(ctx context.Context, userID uuid.UUID) (*PasswordReset, error) {
	if userID == uuid.Nil {
		return nil, goerrors.New("user id is required", goerrors.CategoryBadInput)
	}

	token, err := generateResetToken()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset token")
	}

	now := m.now()

	if _, err := m.store.SupersedeActive(ctx, userID, now); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to supersede previous reset tokens")
	}

	reset := &PasswordReset{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(m.ttl),
	}

	created, err := m.store.CreateReset(ctx, reset)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset token")
	}

	return created, nil
}

// Consume validates and burns a token for the given user. Check order:
// unknown, expired, already used, wrong user. The final mark is a single
// conditional update, so at most one concurrent caller succeeds; the rest
// observe ErrResetTokenUsed.
func (m *ResetTokenManager) Consume(ctx context.Context, token string, userID uuid.UUID) error {
	record, err := m.store.GetByToken(ctx, token)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return ErrResetTokenNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up reset token")
	}

	now := m.now()

	if record.Expired(now) {
		return ErrResetTokenExpired
	}

	if record.Consumed {
		return ErrResetTokenUsed
	}

	if record.UserID != userID {
		return ErrResetTokenUserMismatch
	}

	won, err := m.store.MarkConsumed(ctx, token, now)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume reset token")
	}

	if !won {
		// lost the race against a concurrent consume
		return ErrResetTokenUsed
	}

	return nil
}

// PurgeExpired sweeps expired and consumed rows. Callers may skip it
// entirely; stale rows are rejected by Consume regardless of retention.
func (m *ResetTokenManager) PurgeExpired(ctx context.Context) (int64, error) {
	purged, err := m.store.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to purge reset tokens")
	}

	if purged > 0 {
		m.logger.Debug("purged stale reset tokens", "count", purged)
	}

	return purged, nil
}

// TTL exposes the configured token lifetime.
func (m *ResetTokenManager) TTL() time.Duration {
	return m.ttl
}

func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
