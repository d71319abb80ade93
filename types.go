package auth

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	ClaimsFromToken(token string) (AuthClaims, error)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Email() string
	Role() string
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenTTL() time.Duration
	GetIssuer() string
	GetAudience() []string
	GetResetTokenTTL() time.Duration
}

// IdentityProvider ensures we have a store to retrieve auth identities
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, email, password string) (Identity, error)
	FindIdentityByEmail(ctx context.Context, email string) (Identity, error)
}

// TokenService handles bearer token generation and validation
type TokenService interface {
	Generate(identity Identity) (string, error)
	Validate(token string) (AuthClaims, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// defLogger writes one line per entry, trailing args rendered as
// key=value pairs.
type defLogger struct {
	out io.Writer
}

func (d defLogger) Error(msg string, args ...any) { d.log("[ERR]", msg, args) }

func (d defLogger) Warn(msg string, args ...any) { d.log("[WRN]", msg, args) }

func (d defLogger) Info(msg string, args ...any) { d.log("[INF]", msg, args) }

func (d defLogger) Debug(msg string, args ...any) { d.log("[DBG]", msg, args) }

func (d defLogger) log(level, msg string, args []any) {
	out := d.out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, level+" AUTH "+msg+logPairs(args))
}

// logPairs renders args as " k=v" pairs. A dangling value without a key is
// printed bare rather than dropped.
func logPairs(args []any) string {
	var b strings.Builder
	i := 0
	for ; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	if i < len(args) {
		fmt.Fprintf(&b, " %v", args[i])
	}
	return b.String()
}
