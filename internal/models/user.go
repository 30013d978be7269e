// Package models defines the persistence entities of the back-office.
package models

import "time"

// Role is the access level of a user account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// IsAdmin reports whether r grants back-office access.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is an identity record. PasswordHash is nil for OAuth-only accounts.
type User struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash *string   `db:"password_hash"`
	Role         Role      `db:"role"`
	Image        *string   `db:"image"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
