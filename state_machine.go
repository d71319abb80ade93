package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidTransition = "INVALID_ACCOUNT_STATE_TRANSITION"
	textCodeTerminalState     = "TERMINAL_ACCOUNT_STATE"
)

// ErrInvalidTransition is returned when a requested status change is not allowed.
var ErrInvalidTransition = goerrors.New("invalid account state transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// ErrTerminalState is returned when attempting to move away from a terminal status (archived).
var ErrTerminalState = goerrors.New("account state is terminal", goerrors.CategoryConflict).
	WithTextCode(textCodeTerminalState).
	WithCode(goerrors.CodeConflict)

// AccountStateMachine defines lifecycle operations for user accounts.
type AccountStateMachine interface {
	Transition(ctx context.Context, user *User, target AccountStatus) (*User, error)
	CurrentStatus(user *User) AccountStatus
}

// StateMachineOption customizes state machine construction.
type StateMachineOption func(*accountStateMachine)

// WithStateMachineClock injects a custom clock (useful for tests).
func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(sm *accountStateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithStateMachineLogger overrides the logger.
func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(sm *accountStateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// NewAccountStateMachine returns the default implementation backed by the
// provided repository.
func NewAccountStateMachine(users Users, opts ...StateMachineOption) AccountStateMachine {
	sm := &accountStateMachine{
		users: users,
		transitions: map[AccountStatus]map[AccountStatus]struct{}{
			AccountActive: {
				AccountLocked:   {},
				AccountDisabled: {},
				AccountArchived: {},
			},
			AccountLocked: {
				AccountActive:   {},
				AccountDisabled: {},
			},
			AccountDisabled: {
				AccountActive:   {},
				AccountArchived: {},
			},
		},
		now:    time.Now,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

type accountStateMachine struct {
	users       Users
	transitions map[AccountStatus]map[AccountStatus]struct{}
	now         func() time.Time
	logger      Logger
}

func (sm *accountStateMachine) Transition(ctx context.Context, user *User, target AccountStatus) (*User, error) {
	if user == nil {
		return nil, cloneWithMetadata(ErrInvalidTransition, map[string]any{
			"target": target,
			"reason": "user is nil",
		})
	}

	user.EnsureStatus()
	from := user.Status
	if target == "" || !IsValidAccountStatus(target) {
		return nil, cloneWithMetadata(ErrInvalidTransition, map[string]any{
			"reason": "target status is empty or unknown",
			"target": target,
		})
	}

	if from == target {
		return user, nil
	}

	if from == AccountArchived {
		return nil, cloneWithMetadata(ErrTerminalState, map[string]any{
			"from": from,
			"to":   target,
		})
	}

	if !sm.canTransition(from, target) {
		return nil, cloneWithMetadata(ErrInvalidTransition, map[string]any{
			"from": from,
			"to":   target,
		})
	}

	updated, err := sm.users.UpdateStatus(ctx, user.ID, target)
	if err != nil {
		return nil, err
	}

	if updated != nil && updated.Status != "" {
		user.Status = updated.Status
	} else {
		user.Status = target
	}

	sm.logger.Info("account status changed", "user_id", user.ID.String(), "from", from, "to", target)

	return user, nil
}

func (sm *accountStateMachine) CurrentStatus(user *User) AccountStatus {
	if user == nil {
		return ""
	}
	user.EnsureStatus()
	return user.Status
}

func (sm *accountStateMachine) canTransition(from, to AccountStatus) bool {
	if allowed, ok := sm.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}
