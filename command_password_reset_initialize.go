package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// ResetMailTemplate is the template key for the reset-token notification.
const ResetMailTemplate = "user.password_reset"

type InitializePasswordResetMessage struct {
	Email string `json:"email"`
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset_initialize" }

type InitializePasswordResetResponse struct {
	Reset   *PasswordReset
	Success bool
}

// InitializePasswordResetHandler starts the forgot-password flow. Unknown
// emails produce the same success-shaped outcome as known ones; only a
// known email gets a token issued and mailed.
type InitializePasswordResetHandler struct {
	repo   RepositoryManager
	resets *ResetTokenManager
	mail   *MailDispatcher
	logger Logger
}

// NewInitializePasswordResetHandler creates a handler with sane defaults.
func NewInitializePasswordResetHandler(repo RepositoryManager, resets *ResetTokenManager) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:   repo,
		resets: resets,
		mail:   NewMailDispatcher(nil, nil),
		logger: defLogger{},
	}
}

// WithMailDispatcher sets the dispatcher used to send the reset token.
func (h *InitializePasswordResetHandler) WithMailDispatcher(d *MailDispatcher) *InitializePasswordResetHandler {
	if d != nil {
		h.mail = d
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			// success-shaped on purpose; nothing issued, nothing sent
			h.logger.Debug("password reset requested for unknown email")
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	reset, err := h.resets.Issue(ctx, user.ID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue password reset token")
	}

	h.mail.Dispatch(MailMessage{
		To:          user.Email,
		Subject:     "Password reset",
		TemplateKey: ResetMailTemplate,
		Variables: map[string]any{
			"name":       user.FullName(),
			"token":      reset.Token,
			"expires_at": reset.ExpiresAt,
		},
	})

	return nil
}
