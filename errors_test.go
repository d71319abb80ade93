package auth_test

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/staffdesk/auth"
	"github.com/stretchr/testify/assert"
)

func TestHasTextCode(t *testing.T) {
	assert.True(t, auth.HasTextCode(auth.ErrInvalidCredentials, auth.TextCodeInvalidCredentials))
	assert.True(t, auth.HasTextCode(auth.ErrAccountLocked, auth.TextCodeAccountLocked))
	assert.True(t, auth.HasTextCode(auth.ErrForbidden, auth.TextCodeForbidden))

	assert.False(t, auth.HasTextCode(auth.ErrInvalidCredentials, auth.TextCodeForbidden))
	assert.False(t, auth.HasTextCode(errors.New("plain"), auth.TextCodeForbidden))
	assert.False(t, auth.HasTextCode(nil, auth.TextCodeForbidden))
}

func TestIsTokenExpiredError(t *testing.T) {
	assert.True(t, auth.IsTokenExpiredError(auth.ErrTokenExpired))
	assert.True(t, auth.IsTokenExpiredError(errors.New("jwt: token is expired by 5m")))

	assert.False(t, auth.IsTokenExpiredError(nil))
	assert.False(t, auth.IsTokenExpiredError(auth.ErrTokenMalformed))
	assert.False(t, auth.IsTokenExpiredError(errors.New("some other failure")))
}

func TestIsMalformedError(t *testing.T) {
	assert.True(t, auth.IsMalformedError(auth.ErrTokenMalformed))
	assert.True(t, auth.IsMalformedError(errors.New("missing or malformed JWT")))

	assert.False(t, auth.IsMalformedError(nil))
	assert.False(t, auth.IsMalformedError(auth.ErrTokenExpired))
}

func TestAuthFailureKindsStayDistinct(t *testing.T) {
	// unauthenticated vs forbidden is the load-bearing distinction for
	// transports: 401 asks for credentials, 403 refuses them
	assert.Equal(t, goerrors.CategoryAuth, auth.ErrUnauthenticated.Category)
	assert.Equal(t, goerrors.CategoryAuthz, auth.ErrForbidden.Category)
	assert.NotEqual(t, auth.ErrUnauthenticated.TextCode, auth.ErrForbidden.TextCode)
}

func TestResetTokenErrorKinds(t *testing.T) {
	kinds := map[string]*goerrors.Error{
		auth.TextCodeResetTokenNotFound:  auth.ErrResetTokenNotFound,
		auth.TextCodeResetTokenExpired:   auth.ErrResetTokenExpired,
		auth.TextCodeResetTokenUsed:      auth.ErrResetTokenUsed,
		auth.TextCodeResetTokenWrongUser: auth.ErrResetTokenUserMismatch,
	}

	for code, err := range kinds {
		assert.True(t, auth.HasTextCode(err, code))
	}
}
