package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// ClaimsLocalKey is where the bearer middleware stores verified claims on
// the request.
const ClaimsLocalKey = "auth_claims"

const bearerScheme = "Bearer"

// RequireAuth verifies the Authorization bearer token and stores its claims
// in the request context. Anything short of a valid token answers 401 with
// the unauthenticated kind; authorization failures are a later, distinct
// concern.
func RequireAuth(ts TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := extractBearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return writeError(c, err)
		}

		claims, err := ts.Validate(raw)
		if err != nil {
			if IsTokenExpiredError(err) {
				return writeError(c, ErrTokenExpired)
			}
			return writeError(c, ErrUnauthenticated)
		}

		c.Locals(ClaimsLocalKey, claims)
		c.SetUserContext(WithClaimsContext(c.UserContext(), claims))

		return c.Next()
	}
}

// RequireRoleMiddleware gates a route on the worker < leader < admin order.
// Mount after RequireAuth.
func RequireRoleMiddleware(minRole UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromFiber(c)
		if !ok {
			return writeError(c, ErrUnauthenticated)
		}

		if err := RequireRole(claims, minRole); err != nil {
			return writeError(c, err)
		}

		return c.Next()
	}
}

// ClaimsFromFiber extracts verified claims stored by RequireAuth.
func ClaimsFromFiber(c *fiber.Ctx) (AuthClaims, bool) {
	raw := c.Locals(ClaimsLocalKey)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(AuthClaims)
	return claims, ok
}

func extractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrUnauthenticated
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) || strings.TrimSpace(parts[1]) == "" {
		return "", cloneWithMetadata(ErrUnauthenticated, map[string]any{
			"reason": "malformed authorization header",
		})
	}

	return strings.TrimSpace(parts[1]), nil
}

// writeError maps a rich error to a JSON response. Spent and expired reset
// tokens both answer 410; the code field keeps the two distinguishable.
func writeError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	switch richErr.TextCode {
	case TextCodeResetTokenExpired, TextCodeResetTokenUsed:
		status = fiber.StatusGone
	}
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	body := fiber.Map{
		"error": richErr.Message,
	}
	if richErr.TextCode != "" {
		body["code"] = richErr.TextCode
	}
	if fields, ok := richErr.Metadata["fields"]; ok {
		body["fields"] = fields
	}

	return c.Status(status).JSON(body)
}
