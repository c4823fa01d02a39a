package domain

import "strings"

// Role is the role claim stored in the identity provider's user metadata
type Role string

const (
	RoleStudent   Role = "student"
	RoleAdmin     Role = "admin"
	RoleTrainer   Role = "trainer"
	RoleCorporate Role = "corporate"
)

// DefaultRole is assigned to users who never picked one
const DefaultRole = RoleStudent

// AllRoles lists every role in display order
var AllRoles = []Role{RoleStudent, RoleTrainer, RoleCorporate, RoleAdmin}

// ParseRole normalises s into a Role. Unknown values report false.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.IsValid()
}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleAdmin, RoleTrainer, RoleCorporate:
		return true
	}
	return false
}

// SelfAssignable reports whether a user may pick this role during sign-up
func (r Role) SelfAssignable() bool {
	return r == RoleStudent || r == RoleTrainer || r == RoleCorporate
}

// DashboardPath is the page a user with this role lands on
func (r Role) DashboardPath() string {
	if !r.IsValid() {
		return "/dashboard/" + string(DefaultRole)
	}
	return "/dashboard/" + string(r)
}
