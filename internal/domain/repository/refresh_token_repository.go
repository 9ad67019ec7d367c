package repository

import (
	"context"

	"gatehouse/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for refresh token persistence.
var (
	// ErrRefreshTokenNotFound is returned when a refresh token is not found.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	// ErrRefreshTokenConflict is returned when an insert loses a race
	// against a concurrent session write (unique constraint violation).
	// The caller retries the enclosing transaction.
	ErrRefreshTokenConflict = errors.New("refresh token conflict")
)

// RefreshTokenRepository defines the interface for refresh token persistence.
// The single-active-token-per-user policy is enforced by the session usecase
// (DeleteByUserID followed by Create inside one transaction) and backstopped
// by the unique user_id index, which turns a concurrent double-insert into
// ErrRefreshTokenConflict for one of the writers.
type RefreshTokenRepository interface {
	// Create persists a new refresh token record.
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindByHash retrieves a refresh token record by its stored hash.
	// Expiry is NOT checked here; the caller decides what an expired
	// record means (refresh deletes it and demands a re-login).
	FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// FindByUserID retrieves all refresh tokens for a specific user.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error)

	// DeleteByHash removes a refresh token by its hash. Idempotent:
	// deleting an absent token is not an error.
	DeleteByHash(ctx context.Context, tokenHash string) error

	// DeleteByUserID removes all refresh tokens for a user. Idempotent.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired removes all expired refresh tokens. Periodic cleanup.
	DeleteExpired(ctx context.Context) error
}
