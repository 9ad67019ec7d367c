package repository

import (
	"context"
	"errors"

	"gatehouse/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for role persistence.
var (
	// ErrRoleNotFound is returned when a role is not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleExists is returned when a role name collides with an existing one.
	ErrRoleExists = errors.New("role already exists")
)

// RoleRepository defines the standard operations for role persistence.
type RoleRepository interface {
	// Create persists a new role. The name must already be case-normalized.
	Create(ctx context.Context, role *entity.Role) error

	// FindByID retrieves a role by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Role, error)

	// FindByName retrieves a non-deleted role by its normalized name.
	FindByName(ctx context.Context, name string) (*entity.Role, error)

	// List returns all non-deleted roles.
	List(ctx context.Context) ([]*entity.Role, error)

	// SoftDelete marks a role deleted without removing the row.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// HardDelete permanently removes a role row.
	HardDelete(ctx context.Context, id uuid.UUID) error
}
