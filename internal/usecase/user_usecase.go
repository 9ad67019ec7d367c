package usecase

import (
	"context"
	"time"
)

// UserOutput is the external representation of a user account.
type UserOutput struct {
	UserID       string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	CountryCode  string
	ContactNo    string
	Organization string
	Active       bool
	Role         string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUsecase defines the interface for user administration operations.
type UserUsecase interface {
	// GetUser returns a user by ID. Soft-deleted users read as not found.
	GetUser(ctx context.Context, userID string) (*UserOutput, error)

	// DeleteUser soft-deletes a user, revokes their sessions and emits a
	// user.deleted event. deletedBy records the acting principal.
	DeleteUser(ctx context.Context, userID, deletedBy string) error

	// AssignRole adds a role to a user and emits a user.role.changed
	// event. Assigning an already-held role is a no-op.
	AssignRole(ctx context.Context, userID, roleName, changedBy string) (*UserOutput, error)

	// RemoveRole removes a role from a user and emits a user.role.changed
	// event. Removing a role the user does not hold is a no-op.
	RemoveRole(ctx context.Context, userID, roleName, changedBy string) (*UserOutput, error)
}
