package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken represents a long-lived, revocable session credential.
// Only a SHA-256 hash of the opaque token string is stored; the raw
// token exists solely in the response returned to the client.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token's expiry is strictly in the past.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
