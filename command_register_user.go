package auth

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// WelcomeMailTemplate is the template key handed to the email collaborator
// on successful registration.
const WelcomeMailTemplate = "user.welcome"

type RegisterUserMessage struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	BirthDate string `json:"birth_date"`
	Address   string `json:"address"`
	Phone     string `json:"phone_number"`
	Role      string `json:"role"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Validate will run validation rules
func (e RegisterUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&e.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&e.BirthDate, validation.Required, validation.By(ValidateBirthDate)),
		validation.Field(&e.Phone, validation.By(ValidatePhoneNumber)),
	)
}

type RegisterUserHandler struct {
	repo   RepositoryManager
	mail   *MailDispatcher
	logger Logger
}

// NewRegisterUserHandler creates a handler with sane defaults.
func NewRegisterUserHandler(repo RepositoryManager) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:   repo,
		mail:   NewMailDispatcher(nil, nil),
		logger: defLogger{},
	}
}

// WithMailDispatcher sets the dispatcher used for the welcome notification.
func (h *RegisterUserHandler) WithMailDispatcher(d *MailDispatcher) *RegisterUserHandler {
	if d != nil {
		h.mail = d
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	if err := event.Validate(); err != nil {
		return cloneWithMetadata(ErrValidationFailed, map[string]any{
			"fields": FormatValidationErrorToMap(err),
		})
	}

	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = strings.ToLower(strings.TrimSpace(event.Email))
		user.FirstName = event.FirstName
		user.LastName = event.LastName
		user.Address = event.Address
		user.Phone = event.Phone

		if birthDate, err := time.Parse("2006-01-02", event.BirthDate); err == nil {
			user.BirthDate = &birthDate
		}

		if role, ok := ParseRole(event.Role); ok {
			user.Role = role
		}

		// duplicate probing is enumeration-prone, so we check inside the
		// same transaction that creates the row
		if _, err := h.repo.Users().GetByEmailTx(ctx, tx, user.Email); err == nil {
			return ErrDuplicateEmail
		} else if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	h.mail.Dispatch(MailMessage{
		To:          user.Email,
		Subject:     "Welcome aboard",
		TemplateKey: WelcomeMailTemplate,
		Variables: map[string]any{
			"name": user.FullName(),
		},
	})

	return nil
}
