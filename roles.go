package auth

// UserRole is the user's role
type UserRole string

const (
	// RoleGuest is an guest role (ie. view)
	RoleGuest UserRole = "guest"
	// RoleMember us a member (i.e. view, edit)
	RoleMember UserRole = "member"
	// RoleAdmin is an admin role
	RoleAdmin UserRole = "admin"
)

var validRoles = map[UserRole]struct{}{
	RoleGuest:  {},
	RoleMember: {},
	RoleAdmin:  {},
}

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	_, ok := validRoles[r]
	return ok
}
