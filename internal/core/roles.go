package core

import "strings"

// Role is the closed set of account roles resolved by the identity service.
// Authorization rules live here as capability methods instead of string
// comparisons scattered across handlers.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleManager     Role = "manager"
	RoleSalesperson Role = "salesperson"
	RoleEmployee    Role = "employee"
)

// Identity is the authenticated caller, resolved upstream and threaded
// explicitly into every lifecycle and analytics call.
type Identity struct {
	UserID int64
	Role   Role
}

// ParseRole validates a role name against the closed set.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleManager, RoleSalesperson, RoleEmployee:
		return r, nil
	default:
		return "", ValidationError{Field: "role", Reason: "unknown role"}
	}
}

// CanReview reports whether the role may approve or reject expenses.
func (r Role) CanReview() bool {
	return r == RoleAdmin || r == RoleManager
}

// CanCreateProject reports whether the role may create projects.
func (r Role) CanCreateProject() bool {
	return r == RoleAdmin || r == RoleManager
}
