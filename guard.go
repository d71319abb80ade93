package auth

// The guard is a pure decision layer: given verified claims and a
// requirement it answers allow/deny, and never touches storage. A missing or
// nil claims value is an authentication problem (ErrUnauthenticated); a
// present claims value that fails the requirement is an authorization
// problem (ErrForbidden). The two kinds stay distinct even when a transport
// maps them to similar responses.

// RequireRole allows callers whose role is at least minRole in the
// worker < leader < admin order.
func RequireRole(claims AuthClaims, minRole UserRole) error {
	if claims == nil {
		return ErrUnauthenticated
	}

	if !claims.IsAtLeast(string(minRole)) {
		return cloneWithMetadata(ErrForbidden, map[string]any{
			"required_role": minRole,
			"actual_role":   claims.Role(),
		})
	}

	return nil
}

// RequireExactRole allows only callers holding exactly the given role.
func RequireExactRole(claims AuthClaims, role UserRole) error {
	if claims == nil {
		return ErrUnauthenticated
	}

	if !claims.HasRole(string(role)) {
		return cloneWithMetadata(ErrForbidden, map[string]any{
			"required_role": role,
			"actual_role":   claims.Role(),
		})
	}

	return nil
}

// RequireSelf is the ownership predicate: the caller must be the user named
// by userID. Admins do not bypass it; password changes stay first person.
func RequireSelf(claims AuthClaims, userID string) error {
	if claims == nil {
		return ErrUnauthenticated
	}

	if userID == "" || claims.UserID() != userID {
		return cloneWithMetadata(ErrForbidden, map[string]any{
			"subject": userID,
		})
	}

	return nil
}

// RequireSelfOrRole allows the owner, or any caller at or above minRole.
func RequireSelfOrRole(claims AuthClaims, userID string, minRole UserRole) error {
	if claims == nil {
		return ErrUnauthenticated
	}

	if err := RequireSelf(claims, userID); err == nil {
		return nil
	}

	return RequireRole(claims, minRole)
}
