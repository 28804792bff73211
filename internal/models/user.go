package models

import "time"

// Role values for User.Role. Roles are fixed at signup; there is no
// escalation endpoint.
const (
	RoleCitizen  = "citizen"
	RoleOfficial = "official"
)

type User struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"` // salted hash, never returned
	Role     string `json:"role"`
	Phone    string `json:"phone,omitempty"`
}

// ValidRole reports whether role is one of the two supported roles.
func ValidRole(role string) bool {
	return role == RoleCitizen || role == RoleOfficial
}
