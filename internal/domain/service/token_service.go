package service

import (
	"time"

	"github.com/pkg/errors"
)

// Verification failure kinds. The authorization middleware logs these and
// degrades to anonymous; the refresh path maps them to 401 responses.
var (
	// ErrTokenExpired is returned when a token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed is returned when a token cannot be parsed at all.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenSignature is returned when a token's signature does not verify.
	ErrTokenSignature = errors.New("token signature invalid")
	// ErrTokenEmpty is returned when an empty token string is presented.
	ErrTokenEmpty = errors.New("token empty")
)

// AccessClaims is the verified content of an access token: the subject
// plus the normalized role set. No other claim leaves the codec.
type AccessClaims struct {
	UserID   string
	Username string
	Roles    []string
}

// TokenService signs and verifies self-contained access tokens and mints
// the opaque strings used as refresh tokens. It holds the process-wide
// signing key, loaded once at startup and never mutated.
type TokenService interface {
	// IssueAccessToken creates a signed, time-boxed access token carrying
	// the subject and role claims.
	IssueAccessToken(userID, username string, roles []string) (string, error)

	// VerifyAccessToken checks signature and expiry and returns the
	// claims. Fails with one of ErrTokenExpired, ErrTokenMalformed,
	// ErrTokenSignature or ErrTokenEmpty.
	VerifyAccessToken(tokenString string) (*AccessClaims, error)

	// NewRefreshToken generates a random opaque token string with at
	// least 128 bits of entropy.
	NewRefreshToken() (string, error)

	// HashToken produces the hash under which a refresh token is stored.
	HashToken(token string) string

	// AccessTokenTTL returns the configured access token lifetime.
	AccessTokenTTL() time.Duration

	// RefreshTokenTTL returns the configured refresh token lifetime.
	RefreshTokenTTL() time.Duration
}
