package auth

// IsValid checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleWorker, RoleLeader, RoleAdmin:
		return true
	default:
		return false
	}
}

// RoleAtLeast checks if the role meets the minimum required level. The
// hierarchy is a total order: worker < leader < admin. Unknown roles never
// satisfy any requirement.
func RoleAtLeast(r, minRole UserRole) bool {
	roleHierarchy := map[UserRole]int{
		RoleWorker: 0,
		RoleLeader: 1,
		RoleAdmin:  2,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// AllRoles returns all predefined roles in hierarchical order
func AllRoles() []UserRole {
	return []UserRole{
		RoleWorker,
		RoleLeader,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}
