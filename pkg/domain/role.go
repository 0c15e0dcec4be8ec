package domain

import dErrors "projecthub/pkg/domain-errors"

// Role is the closed set of user roles. Claims carry a Role parsed once at
// the authentication boundary; downstream code switches on the typed value
// instead of comparing strings.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole validates a role string. An empty string defaults to RoleUser,
// matching the registration default.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	case "":
		return RoleUser, nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "role must be one of: admin, user")
}

func (r Role) String() string {
	return string(r)
}

// Valid reports whether the role is a member of the closed set.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}
