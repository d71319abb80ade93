package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials    = "INVALID_CREDENTIALS"
	TextCodeAccountLocked         = "ACCOUNT_LOCKED"
	TextCodeAccountDisabled       = "ACCOUNT_DISABLED"
	TextCodeTooManyLoginAttempts  = "TOO_MANY_LOGIN_ATTEMPTS"
	TextCodeDuplicateEmail        = "DUPLICATE_EMAIL"
	TextCodeValidationFailed      = "VALIDATION_FAILED"
	TextCodeWrongPassword         = "WRONG_PASSWORD"
	TextCodeUnauthenticated       = "UNAUTHENTICATED"
	TextCodeForbidden             = "FORBIDDEN"
	TextCodeTokenExpired          = "TOKEN_EXPIRED"
	TextCodeTokenMalformed        = "TOKEN_MALFORMED"
	TextCodeTokenSignature        = "TOKEN_SIGNATURE_INVALID"
	TextCodeResetTokenNotFound    = "RESET_TOKEN_NOT_FOUND"
	TextCodeResetTokenExpired     = "RESET_TOKEN_EXPIRED"
	TextCodeResetTokenUsed        = "RESET_TOKEN_ALREADY_USED"
	TextCodeResetTokenWrongUser   = "RESET_TOKEN_USER_MISMATCH"
)

// ErrInvalidCredentials is returned for unknown emails and wrong passwords
// alike so callers cannot probe which accounts exist.
var ErrInvalidCredentials = errors.New("invalid email or password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrAccountLocked is returned when the account is locked out of login.
var ErrAccountLocked = errors.New("account is locked", errors.CategoryAuth).
	WithTextCode(TextCodeAccountLocked).
	WithCode(errors.CodeUnauthorized)

// ErrAccountDisabled is returned when the account has been disabled.
var ErrAccountDisabled = errors.New("account is disabled", errors.CategoryAuth).
	WithTextCode(TextCodeAccountDisabled).
	WithCode(errors.CodeUnauthorized)

// ErrTooManyLoginAttempts is returned while the login cooldown is active.
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryAuth).
	WithTextCode(TextCodeTooManyLoginAttempts).
	WithCode(errors.CodeUnauthorized)

// ErrDuplicateEmail is returned when registering with an email that is taken.
var ErrDuplicateEmail = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(errors.CodeConflict)

// ErrValidationFailed is returned with per-field messages in its metadata.
var ErrValidationFailed = errors.New("validation failed", errors.CategoryValidation).
	WithTextCode(TextCodeValidationFailed).
	WithCode(errors.CodeBadRequest)

// ErrWrongPassword is returned when the current password check fails.
var ErrWrongPassword = errors.New("current password does not match", errors.CategoryAuth).
	WithTextCode(TextCodeWrongPassword).
	WithCode(errors.CodeForbidden)

// ErrUnauthenticated is returned for missing, expired or invalid bearer tokens.
var ErrUnauthenticated = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrForbidden is returned when the caller is authenticated but the role or
// ownership check fails. Distinct from ErrUnauthenticated.
var ErrForbidden = errors.New("insufficient permissions", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrTokenExpired is returned for bearer tokens past their expiry.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for structurally invalid bearer tokens.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenSignatureInvalid is returned when the payload fails the signature
// check, i.e. the token was tampered with or signed with a different key.
var ErrTokenSignatureInvalid = errors.New("token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenSignature).
	WithCode(errors.CodeUnauthorized)

// ErrResetTokenNotFound is returned for unknown reset tokens.
var ErrResetTokenNotFound = errors.New("password reset token not found", errors.CategoryNotFound).
	WithTextCode(TextCodeResetTokenNotFound).
	WithCode(errors.CodeNotFound)

// ErrResetTokenExpired is returned for reset tokens past their TTL.
var ErrResetTokenExpired = errors.New("password reset token has expired", errors.CategoryValidation).
	WithTextCode(TextCodeResetTokenExpired).
	WithCode(errors.CodeBadRequest)

// ErrResetTokenUsed is returned for reset tokens that were already consumed,
// including tokens superseded by a newer forgot-password request.
var ErrResetTokenUsed = errors.New("password reset token has already been used", errors.CategoryConflict).
	WithTextCode(TextCodeResetTokenUsed).
	WithCode(errors.CodeConflict)

// ErrResetTokenUserMismatch is returned when a reset token belongs to a
// different user than the one named in the request.
var ErrResetTokenUserMismatch = errors.New("password reset token does not belong to this user", errors.CategoryBadInput).
	WithTextCode(TextCodeResetTokenWrongUser).
	WithCode(errors.CodeBadRequest)

// ErrNoEmptyString guards hashing of empty passwords.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the internal bcrypt mismatch kind. Flows
// translate it before it reaches a client.
var ErrMismatchedHashAndPassword = errors.New("password does not match hash", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// cloneWithMetadata attaches metadata to a copy of a shared error value.
// The shared vars are process-wide; mutating them at request time would leak
// one request's metadata into every other.
func cloneWithMetadata(base *errors.Error, metadata map[string]any) *errors.Error {
	clone := base.Clone()
	if clone == nil {
		return base
	}
	clone.Source = base
	return clone.WithMetadata(metadata)
}

// HasTextCode reports whether err carries the given text code.
func HasTextCode(err error, code string) bool {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return false
	}
	return rich.TextCode == code
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if HasTextCode(err, TextCodeTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if HasTextCode(err, TextCodeTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
