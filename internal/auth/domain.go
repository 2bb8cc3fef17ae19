package auth

import (
	"time"

	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// Role enumerates staff roles.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleStaff:
		return Role(s), nil
	case "":
		return RoleStaff, nil
	default:
		return "", shared.Validationf("unknown role %q", s)
	}
}

// User is a staff account. PasswordHash never leaves the package.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegisterInput carries the fields for a new staff account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
}
