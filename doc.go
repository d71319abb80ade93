// Package auth provides the authentication and authorization core for the
// staffdesk personnel server: password hashing, JWT issuance and
// verification, single-use password reset tokens, and role-based access
// checks.
//
// Account lifecycle:
//   - Users carry an AccountStatus field that is persisted via Bun. Statuses
//     cover active, locked, disabled, and archived so login gating and admin
//     workflows share the same invariants.
//   - AccountStateMachine centralizes the transition graph and persistence.
//     Archived is terminal; the Users repository exposes Lock, Reinstate,
//     Disable, and Archive as thin wrappers over Transition.
//
// Reset tokens:
//   - ResetTokenManager issues 256-bit single-use tokens with a bounded TTL.
//     Issuing supersedes any live token for the user, and consumption is a
//     single conditional update, so concurrent attempts on the same token
//     resolve to exactly one winner.
//
// Authorization:
//   - Roles form a total order (worker < leader < admin). RequireRole,
//     RequireSelf, and friends are pure checks over verified claims; the
//     fiber middleware wires them to HTTP routes.
package auth
