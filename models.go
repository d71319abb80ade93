package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleWorker is the base role (regular staff member)
	RoleWorker UserRole = "worker"
	// RoleLeader is a team leader (worker plus team management)
	RoleLeader UserRole = "leader"
	// RoleAdmin has full administrative access
	RoleAdmin UserRole = "admin"
)

// User is the credential and profile record
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role           UserRole      `bun:"user_role,notnull" json:"user_role,omitempty"`
	Status         AccountStatus `bun:"account_status,notnull" json:"account_status,omitempty"`
	FirstName      string        `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName       string        `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email          string        `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone          string        `bun:"phone_number" json:"phone_number,omitempty"`
	Address        string        `bun:"address" json:"address,omitempty"`
	BirthDate      *time.Time    `bun:"birth_date,nullzero" json:"birth_date,omitempty"`
	PasswordHash   string        `bun:"password_hash" json:"-"`
	LoginAttempts  int           `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time    `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time    `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt      *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time    `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus backfills the zero value for records created before the
// account_status column existed.
func (u *User) EnsureStatus() {
	if u.Status == "" {
		u.Status = AccountActive
	}
}

// FullName joins first and last name for notification templates.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// PasswordReset is a single-use reset token record. At most one unconsumed,
// unexpired row exists per user; a new request supersedes the previous row.
type PasswordReset struct {
	bun.BaseModel `bun:"table:password_resets,alias:pwdr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"-"`
	Consumed      bool       `bun:"consumed,notnull" json:"consumed,omitempty"`
	ConsumedAt    *time.Time `bun:"consumed_at,nullzero" json:"consumed_at,omitempty"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Expired reports whether the token is past its TTL at the given instant.
func (r *PasswordReset) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
