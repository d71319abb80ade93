package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
)

// AuthController exposes the auth flows as a JSON API.
type AuthController struct {
	Logger         Logger
	Auther         Authenticator
	Register       *RegisterUserHandler
	ResetInit      *InitializePasswordResetHandler
	ResetFinalize  *FinalizePasswordResetHandler
	ChangePassword *ChangePasswordHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithAuthenticator(a Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = a
		return c
	}
}

func WithFlowHandlers(
	register *RegisterUserHandler,
	resetInit *InitializePasswordResetHandler,
	resetFinalize *FinalizePasswordResetHandler,
	changePassword *ChangePasswordHandler,
) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Register = register
		c.ResetInit = resetInit
		c.ResetFinalize = resetFinalize
		c.ChangePassword = changePassword
		return c
	}
}

// RegisterAuthRoutes mounts the auth endpoints on the app.
func RegisterAuthRoutes(app *fiber.App, controller *AuthController, ts TokenService) {
	grp := app.Group("/auth")

	grp.Post("/authenticate", controller.Authenticate)
	grp.Post("/register", controller.RegisterUser)
	grp.Post("/forgot-password", controller.ForgotPassword)
	grp.Post("/reset-password", controller.ResetPassword)
	grp.Patch("/change-password", RequireAuth(ts), controller.ChangeUserPassword)
}

// AuthenticateRequest payload
type AuthenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r AuthenticateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) Authenticate(c *fiber.Ctx) error {
	payload := new(AuthenticateRequest)

	if err := c.BodyParser(payload); err != nil {
		return writeError(c, cloneWithMetadata(ErrValidationFailed, map[string]any{
			"fields": map[string]string{"body": "failed to parse request body"},
		}))
	}

	if err := payload.Validate(); err != nil {
		return writeError(c, cloneWithMetadata(ErrValidationFailed, map[string]any{
			"fields": FormatValidationErrorToMap(err),
		}))
	}

	token, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Info("authentication failed", "error", err)
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token": token,
	})
}

func (a *AuthController) RegisterUser(c *fiber.Ctx) error {
	payload := new(RegisterUserMessage)

	if err := c.BodyParser(payload); err != nil {
		return writeError(c, cloneWithMetadata(ErrValidationFailed, map[string]any{
			"fields": map[string]string{"body": "failed to parse request body"},
		}))
	}

	// self-service registration never grants elevated roles
	payload.Role = string(RoleWorker)

	if err := a.Register.Execute(c.UserContext(), *payload); err != nil {
		a.Logger.Info("registration failed", "error", err)
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusAccepted)
}

func (a *AuthController) ForgotPassword(c *fiber.Ctx) error {
	payload := new(InitializePasswordResetMessage)

	if err := c.BodyParser(payload); err != nil {
		return writeError(c, cloneWithMetadata(ErrValidationFailed, map[string]any{
			"fields": map[string]string{"body": "failed to parse request body"},
		}))
	}

	if err := a.ResetInit.Execute(c.UserContext(), *payload); err != nil {
		// internal trouble only; unknown emails already answered success
		a.Logger.Error("forgot password failed", "error", err)
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "ok",
	})
}

func (a *AuthController) ResetPassword(c *fiber.Ctx) error {
	payload := new(FinalizePasswordResetMessage)

	if err := c.BodyParser(payload); err != nil {
		return writeError(c, cloneWithMetadata(ErrValidationFailed, map[string]any{
			"fields": map[string]string{"body": "failed to parse request body"},
		}))
	}

	if err := a.ResetFinalize.Execute(c.UserContext(), *payload); err != nil {
		a.Logger.Info("password reset failed", "error", err)
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "ok",
	})
}

// ChangePasswordRequest payload
type ChangePasswordRequest struct {
	UserID          string `json:"user_id"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (a *AuthController) ChangeUserPassword(c *fiber.Ctx) error {
	claims, ok := ClaimsFromFiber(c)
	if !ok {
		return writeError(c, ErrUnauthenticated)
	}

	payload := new(ChangePasswordRequest)
	if err := c.BodyParser(payload); err != nil {
		return writeError(c, cloneWithMetadata(ErrValidationFailed, map[string]any{
			"fields": map[string]string{"body": "failed to parse request body"},
		}))
	}

	// a caller may only rotate their own password
	target := payload.UserID
	if target == "" {
		target = claims.UserID()
	}
	if err := RequireSelf(claims, target); err != nil {
		return writeError(c, err)
	}

	msg := ChangePasswordMessage{
		UserID:          target,
		CurrentPassword: payload.CurrentPassword,
		NewPassword:     payload.NewPassword,
	}

	if err := a.ChangePassword.Execute(c.UserContext(), msg); err != nil {
		a.Logger.Info("password change failed", "error", err)
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "ok",
	})
}
