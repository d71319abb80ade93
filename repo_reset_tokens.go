package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ResetTokenStore is the narrow storage port the ResetTokenManager needs.
// The bun-backed PasswordResets repository implements it; tests use an
// in-memory fake.
type ResetTokenStore interface {
	CreateReset(ctx context.Context, reset *PasswordReset) (*PasswordReset, error)
	GetByToken(ctx context.Context, token string) (*PasswordReset, error)
	SupersedeActive(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	MarkConsumed(ctx context.Context, token string, at time.Time) (bool, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// PasswordResets is the full repository surface for reset records.
type PasswordResets interface {
	repository.Repository[*PasswordReset]
	ResetTokenStore
}

type passwordResets struct {
	repository.Repository[*PasswordReset]
	db *bun.DB
}

var (
	_ PasswordResets  = (*passwordResets)(nil)
	_ ResetTokenStore = (*passwordResets)(nil)
)

func NewPasswordResetsRepository(db *bun.DB) PasswordResets {
	handlers := repository.ModelHandlers[*PasswordReset]{
		NewRecord: func() *PasswordReset {
			return &PasswordReset{}
		},
		GetID: func(record *PasswordReset) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *PasswordReset, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "token"
		},
	}
	return &passwordResets{
		Repository: repository.NewRepository(db, handlers),
		db:         db,
	}
}

func (r *passwordResets) CreateReset(ctx context.Context, reset *PasswordReset) (*PasswordReset, error) {
	if reset.ID == uuid.Nil {
		reset.ID = uuid.New()
	}
	return r.Repository.Create(ctx, reset)
}

func (r *passwordResets) GetByToken(ctx context.Context, token string) (*PasswordReset, error) {
	record := &PasswordReset{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

// SupersedeActive marks every live token for the user consumed. Called
// before storing a fresh token so at most one live token exists per user.
func (r *passwordResets) SupersedeActive(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*PasswordReset)(nil)).
		Set("consumed = ?", true).
		Set("consumed_at = ?", at).
		Where("user_id = ?", userID).
		Where("consumed = ?", false).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// MarkConsumed is the atomic check-and-mark: a single conditional UPDATE
// guarded on consumed = FALSE. Under concurrent consumption of the same
// token exactly one caller sees true.
func (r *passwordResets) MarkConsumed(ctx context.Context, token string, at time.Time) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*PasswordReset)(nil)).
		Set("consumed = ?", true).
		Set("consumed_at = ?", at).
		Where("token = ?", token).
		Where("consumed = ?", false).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

// DeleteExpired removes expired and consumed rows. Retention never affects
// correctness; this only keeps the table small.
func (r *passwordResets) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*PasswordReset)(nil)).
		WhereGroup(" OR ", func(q *bun.DeleteQuery) *bun.DeleteQuery {
			return q.
				Where("expires_at < ?", cutoff).
				WhereOr("consumed = ?", true)
		}).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
