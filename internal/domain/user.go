package domain

// Role is the coarse authorization tier attached to a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// IsAdmin reports whether the role grants administrator rights.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is the domain model for registered accounts.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
}
