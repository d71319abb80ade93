package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/staffdesk/auth"
	"github.com/stretchr/testify/assert"
)

func TestUserProviderVerifyIdentity(t *testing.T) {
	ctx := context.Background()
	mockTracker := new(MockUserTracker)

	provider := auth.NewUserProvider(mockTracker)

	passwordHash, _ := auth.HashPassword("password123")

	t.Run("Successful verification", func(t *testing.T) {
		userID := uuid.New()
		user := &auth.User{
			ID:           userID,
			Email:        "test@example.com",
			PasswordHash: passwordHash,
			Role:         auth.RoleAdmin,
			Status:       auth.AccountActive,
		}

		mockTracker.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()
		mockTracker.On("TrackSuccessfulLogin", ctx, user).Return(nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.NoError(t, err)
		assert.NotNil(t, identity)
		assert.Equal(t, userID.String(), identity.ID())
		assert.Equal(t, "test@example.com", identity.Email())
		assert.Equal(t, auth.RoleAdmin, identity.Role())

		mockTracker.AssertExpectations(t)
	})

	t.Run("Invalid password tracks the attempt", func(t *testing.T) {
		user := &auth.User{
			ID:           uuid.New(),
			Email:        "test@example.com",
			PasswordHash: passwordHash,
			Role:         auth.RoleAdmin,
			Status:       auth.AccountActive,
		}

		mockTracker.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()
		mockTracker.On("TrackAttemptedLogin", ctx, user).Return(nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "wrong_password")

		assert.Error(t, err)
		assert.Nil(t, identity)
		assert.True(t, auth.HasTextCode(err, auth.TextCodeInvalidCredentials))

		mockTracker.AssertExpectations(t)
	})

	t.Run("Unknown email answers with the same kind as a wrong password", func(t *testing.T) {
		mockTracker.On("GetByEmail", ctx, "nonexistent@example.com").
			Return(nil, repository.NewRecordNotFound()).Once()

		identity, err := provider.VerifyIdentity(ctx, "nonexistent@example.com", "password123")

		assert.Error(t, err)
		assert.Nil(t, identity)
		assert.True(t, auth.HasTextCode(err, auth.TextCodeInvalidCredentials))

		mockTracker.AssertExpectations(t)
	})

	t.Run("Too many login attempts", func(t *testing.T) {
		now := time.Now()
		user := &auth.User{
			ID:             uuid.New(),
			Email:          "test@example.com",
			PasswordHash:   passwordHash,
			Role:           auth.RoleAdmin,
			Status:         auth.AccountActive,
			LoginAttempts:  auth.MaxLoginAttempts + 1,
			LoginAttemptAt: &now,
		}

		mockTracker.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.Error(t, err)
		assert.Nil(t, identity)
		assert.True(t, auth.HasTextCode(err, auth.TextCodeTooManyLoginAttempts))

		mockTracker.AssertExpectations(t)
	})

	t.Run("Login attempts reset after the cooldown", func(t *testing.T) {
		userID := uuid.New()
		oldAttempt := time.Now().Add(-48 * time.Hour)
		user := &auth.User{
			ID:             userID,
			Email:          "test@example.com",
			PasswordHash:   passwordHash,
			Role:           auth.RoleAdmin,
			Status:         auth.AccountActive,
			LoginAttempts:  auth.MaxLoginAttempts + 1,
			LoginAttemptAt: &oldAttempt,
		}

		mockTracker.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()
		mockTracker.On("TrackSuccessfulLogin", ctx, user).Return(nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.NoError(t, err)
		assert.NotNil(t, identity)
		assert.Equal(t, userID.String(), identity.ID())

		mockTracker.AssertExpectations(t)
	})

	t.Run("Locked account", func(t *testing.T) {
		user := &auth.User{
			ID:           uuid.New(),
			Email:        "locked@example.com",
			PasswordHash: passwordHash,
			Role:         auth.RoleWorker,
			Status:       auth.AccountLocked,
		}

		mockTracker.On("GetByEmail", ctx, "locked@example.com").Return(user, nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "locked@example.com", "password123")

		assert.Error(t, err)
		assert.Nil(t, identity)
		assert.True(t, auth.HasTextCode(err, auth.TextCodeAccountLocked))

		mockTracker.AssertExpectations(t)
	})

	t.Run("Disabled account", func(t *testing.T) {
		user := &auth.User{
			ID:           uuid.New(),
			Email:        "disabled@example.com",
			PasswordHash: passwordHash,
			Role:         auth.RoleWorker,
			Status:       auth.AccountDisabled,
		}

		mockTracker.On("GetByEmail", ctx, "disabled@example.com").Return(user, nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "disabled@example.com", "password123")

		assert.Error(t, err)
		assert.Nil(t, identity)
		assert.True(t, auth.HasTextCode(err, auth.TextCodeAccountDisabled))

		mockTracker.AssertExpectations(t)
	})

	t.Run("Archived account is indistinguishable from unknown", func(t *testing.T) {
		user := &auth.User{
			ID:           uuid.New(),
			Email:        "gone@example.com",
			PasswordHash: passwordHash,
			Role:         auth.RoleWorker,
			Status:       auth.AccountArchived,
		}

		mockTracker.On("GetByEmail", ctx, "gone@example.com").Return(user, nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "gone@example.com", "password123")

		assert.Error(t, err)
		assert.Nil(t, identity)
		assert.True(t, auth.HasTextCode(err, auth.TextCodeInvalidCredentials))

		mockTracker.AssertExpectations(t)
	})

	t.Run("Invalid role fails validation", func(t *testing.T) {
		user := &auth.User{
			ID:           uuid.New(),
			Email:        "test@example.com",
			PasswordHash: passwordHash,
			Role:         "superuser",
			Status:       auth.AccountActive,
		}

		mockTracker.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()
		mockTracker.On("TrackSuccessfulLogin", ctx, user).Return(nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "test@example.com", "password123")

		assert.Error(t, err)
		assert.Nil(t, identity)

		mockTracker.AssertExpectations(t)
	})
}

func TestUserProviderFindIdentityByEmail(t *testing.T) {
	ctx := context.Background()
	mockTracker := new(MockUserTracker)
	provider := auth.NewUserProvider(mockTracker)

	userID := uuid.New()
	user := &auth.User{
		ID:     userID,
		Email:  "test@example.com",
		Role:   auth.RoleLeader,
		Status: auth.AccountActive,
	}

	mockTracker.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()

	identity, err := provider.FindIdentityByEmail(ctx, "test@example.com")
	assert.NoError(t, err)
	assert.Equal(t, userID.String(), identity.ID())
	assert.Equal(t, auth.RoleLeader, identity.Role())

	mockTracker.On("GetByEmail", ctx, "locked@example.com").
		Return(&auth.User{ID: uuid.New(), Status: auth.AccountLocked, Role: auth.RoleWorker}, nil).Once()

	identity, err = provider.FindIdentityByEmail(ctx, "locked@example.com")
	assert.Error(t, err)
	assert.Nil(t, identity)
	assert.True(t, auth.HasTextCode(err, auth.TextCodeAccountLocked))

	mockTracker.AssertExpectations(t)
}
