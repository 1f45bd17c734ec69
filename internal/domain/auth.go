package domain

import (
	customError "github.com/segyhp/library-engine/pkg/errors"
)

type Role string

const (
	RoleMember    Role = "member"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
)

// Level orders roles by capability. Unknown roles have level 0.
func (r Role) Level() int {
	switch r {
	case RoleMember:
		return 1
	case RoleLibrarian:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

func (r Role) Valid() bool { return r.Level() > 0 }

// ParseRole converts a raw role name as supplied by the identity provider.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// AuthContext identifies the caller of an operation. It is supplied by the
// identity provider and trusted as is.
type AuthContext struct {
	UserID int64
	Role   Role
}

func (a AuthContext) IsAuthenticated() bool {
	return a.UserID > 0 && a.Role.Valid()
}

// IsStaff is true for librarians and admins.
func (a AuthContext) IsStaff() bool {
	return a.Role.Level() >= RoleLibrarian.Level()
}

// Require fails unless the caller holds at least the min role.
func (a AuthContext) Require(min Role) error {
	if !a.IsAuthenticated() {
		return customError.WrapUnauthenticated()
	}
	if a.Role.Level() < min.Level() {
		return customError.WrapForbidden(string(min))
	}
	return nil
}
