// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"
	"time"
)

// RegisterInput carries the fields accepted at registration. There is
// deliberately no role field: every registrant gets the configured
// default role, and privilege grants go through the admin API.
type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	FirstName    string
	LastName     string
	CountryCode  string
	ContactNo    string
	Organization string
}

// RegisterOutput returns the created user's identity and initial session.
type RegisterOutput struct {
	UserID       string
	Username     string
	Email        string
	Roles        []string
	AccessToken  string
	RefreshToken string
	ExpiresInMs  int64
}

// LoginInput carries credentials plus the client key used for rate limiting.
type LoginInput struct {
	Username  string
	Password  string
	ClientKey string
}

// SessionOutput is the common token payload returned by login and refresh.
type SessionOutput struct {
	UserID       string
	Username     string
	Role         string
	Roles        []string
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresInMs  int64
}

// SessionInfo describes one active session for introspection. The token
// itself is never exposed, only its lifetime.
type SessionInfo struct {
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionUsecase defines the interface for session lifecycle operations.
type SessionUsecase interface {
	// Register creates a new account, assigns the default role and opens
	// the first session.
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)

	// Login verifies credentials and replaces any existing session.
	Login(ctx context.Context, input *LoginInput) (*SessionOutput, error)

	// Refresh exchanges a valid refresh token for a fresh token pair,
	// rotating the stored refresh token.
	Refresh(ctx context.Context, refreshToken string) (*SessionOutput, error)

	// Logout revokes the session behind the given refresh token. It is
	// idempotent: unknown tokens succeed silently.
	Logout(ctx context.Context, refreshToken string) error

	// LogoutAll revokes every session belonging to a user.
	LogoutAll(ctx context.Context, userID string) error

	// ListSessions returns the user's active sessions. Expired records
	// awaiting the sweep are filtered out.
	ListSessions(ctx context.Context, userID string) ([]*SessionInfo, error)
}
