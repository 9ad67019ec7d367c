package usecase

import (
	"context"
	"time"
)

// RoleOutput is the external representation of a role.
type RoleOutput struct {
	RoleID        string
	Name          string
	SystemDefined bool
	CreatedAt     time.Time
}

// RoleUsecase defines the interface for role registry operations.
type RoleUsecase interface {
	// CreateRole creates a role with a normalized (uppercase) name.
	CreateRole(ctx context.Context, name string) (*RoleOutput, error)

	// DeleteRole soft-deletes a role. System-defined roles are immutable
	// and refuse deletion.
	DeleteRole(ctx context.Context, roleID string) error

	// ListRoles returns all active roles ordered by name.
	ListRoles(ctx context.Context) ([]*RoleOutput, error)

	// SeedSystemRoles ensures the built-in roles exist, creating any that
	// are missing. Safe to run on every startup.
	SeedSystemRoles(ctx context.Context) error
}
