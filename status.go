package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

// AccountStatus is the lifecycle flag gating login independent of the
// password check.
type AccountStatus = string

const (
	// AccountActive may log in normally
	AccountActive AccountStatus = "active"
	// AccountLocked is temporarily barred from login (e.g. by an admin)
	AccountLocked AccountStatus = "locked"
	// AccountDisabled has been switched off and needs reactivation
	AccountDisabled AccountStatus = "disabled"
	// AccountArchived left the organization; terminal state
	AccountArchived AccountStatus = "archived"
)

// statusAuthError maps a non-active account status to the login error a
// client should see. Archived accounts answer with the same kind as unknown
// emails so departures are not probeable.
func statusAuthError(status AccountStatus) error {
	switch status {
	case AccountActive, "":
		return nil
	case AccountLocked:
		return ErrAccountLocked
	case AccountDisabled:
		return ErrAccountDisabled
	case AccountArchived:
		return ErrInvalidCredentials
	default:
		return goerrors.New("account has an unknown status", goerrors.CategoryInternal).
			WithMetadata(map[string]any{"status": status})
	}
}

// IsValidAccountStatus checks the status against the known lifecycle states.
func IsValidAccountStatus(status AccountStatus) bool {
	switch status {
	case AccountActive, AccountLocked, AccountDisabled, AccountArchived:
		return true
	default:
		return false
	}
}
