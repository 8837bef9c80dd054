package models

// Roles carried in identity tokens.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the caller identity asserted by a verified bearer token.
type User struct {
	ID       string `json:"uid"`
	Name     string `json:"displayName,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	CampusID string `json:"campusId,omitempty"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
