// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core identity record. Username and email are unique among
// non-deleted users; the password is held only as a bcrypt hash.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CountryCode  string
	ContactNo    string
	Organization string
	Active       bool
	Deleted      bool
	Roles        Roles
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanAuthenticate reports whether this account may log in at all.
// Deactivated and soft-deleted accounts are rejected the same way as
// unknown usernames so the login path leaks nothing.
func (u *User) CanAuthenticate() bool {
	return u.Active && !u.Deleted
}

// RoleNames returns the names of all roles assigned to the user.
func (u *User) RoleNames() []string {
	return u.Roles.Names()
}
