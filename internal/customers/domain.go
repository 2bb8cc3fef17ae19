package customers

import "time"

// Customer is a guest account. Unlike staff users it carries contact
// details, which also link the account to orders placed at the counter
// under the same phone or email.
type Customer struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Address      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegisterInput carries the fields for a new customer account.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Address  string
}

// UpdateProfileInput carries optional profile changes. A non-nil Password
// re-hashes the stored credential.
type UpdateProfileInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Address  *string
	Password *string
}
