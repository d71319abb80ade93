package auth_test

import (
	"testing"

	"github.com/staffdesk/auth"
	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	assert.True(t, auth.IsValidRole(auth.RoleWorker))
	assert.True(t, auth.IsValidRole(auth.RoleLeader))
	assert.True(t, auth.IsValidRole(auth.RoleAdmin))
	assert.False(t, auth.IsValidRole("superuser"))
	assert.False(t, auth.IsValidRole(""))
}

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		name     string
		role     auth.UserRole
		minRole  auth.UserRole
		expected bool
	}{
		{"worker meets worker", auth.RoleWorker, auth.RoleWorker, true},
		{"worker below leader", auth.RoleWorker, auth.RoleLeader, false},
		{"worker below admin", auth.RoleWorker, auth.RoleAdmin, false},
		{"leader above worker", auth.RoleLeader, auth.RoleWorker, true},
		{"leader meets leader", auth.RoleLeader, auth.RoleLeader, true},
		{"leader below admin", auth.RoleLeader, auth.RoleAdmin, false},
		{"admin above worker", auth.RoleAdmin, auth.RoleWorker, true},
		{"admin above leader", auth.RoleAdmin, auth.RoleLeader, true},
		{"admin meets admin", auth.RoleAdmin, auth.RoleAdmin, true},
		{"unknown role never qualifies", "superuser", auth.RoleWorker, false},
		{"unknown requirement never satisfied", auth.RoleAdmin, "superuser", false},
		{"empty role never qualifies", "", auth.RoleWorker, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.RoleAtLeast(tt.role, tt.minRole))
		})
	}
}

func TestAllRoles(t *testing.T) {
	roles := auth.AllRoles()
	assert.Equal(t, []auth.UserRole{auth.RoleWorker, auth.RoleLeader, auth.RoleAdmin}, roles)
}

func TestParseRole(t *testing.T) {
	role, ok := auth.ParseRole("leader")
	assert.True(t, ok)
	assert.Equal(t, auth.RoleLeader, role)

	_, ok = auth.ParseRole("Leader")
	assert.False(t, ok)

	_, ok = auth.ParseRole("")
	assert.False(t, ok)
}

func TestIsValidAccountStatus(t *testing.T) {
	assert.True(t, auth.IsValidAccountStatus(auth.AccountActive))
	assert.True(t, auth.IsValidAccountStatus(auth.AccountLocked))
	assert.True(t, auth.IsValidAccountStatus(auth.AccountDisabled))
	assert.True(t, auth.IsValidAccountStatus(auth.AccountArchived))
	assert.False(t, auth.IsValidAccountStatus(""))
	assert.False(t, auth.IsValidAccountStatus("frozen"))
}
