// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"gatehouse/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations for user persistence.
// The application layer depends on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID, roles preloaded.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByUsername retrieves a single non-deleted user by username.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByEmail retrieves a single non-deleted user by email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new user entity along with its role assignments.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing user entity, replacing role assignments.
	Update(ctx context.Context, user *entity.User) error

	// SoftDelete marks a user inactive and deleted without removing the row.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// HardDelete permanently removes a user row and its role assignments.
	HardDelete(ctx context.Context, id uuid.UUID) error
}
