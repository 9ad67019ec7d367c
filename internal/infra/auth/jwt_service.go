// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"gatehouse/config"
	"gatehouse/internal/domain/service"
)

// refreshTokenBytes is the entropy of an opaque refresh token. 256 bits
// keeps brute-forcing a stored hash out of reach.
const refreshTokenBytes = 32

// accessClaims is the JWT claim set carried by access tokens.
type accessClaims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewJWTService is the constructor for jwtService. The signing key is
// decoded from config once here and reused for the process lifetime.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	key, err := cfg.Auth.SigningKey()
	if err != nil {
		return nil, errors.Wrap(err, "load jwt signing key")
	}

	return &jwtService{
		signingKey: key,
		accessTTL:  cfg.Auth.AccessTokenTTL(),
		refreshTTL: cfg.Auth.RefreshTokenTTL(),
		now:        time.Now,
	}, nil
}

// IssueAccessToken creates a signed HS256 token carrying the subject and role claims.
func (s *jwtService) IssueAccessToken(userID, username string, roles []string) (string, error) {
	now := s.now()
	claims := accessClaims{
		Username: username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", errors.Wrap(err, "sign access token")
	}

	return signed, nil
}

// VerifyAccessToken checks signature and expiry and maps every parser
// failure onto one of the service-level token errors. Claims are decoded
// as a raw map so role extraction handles the flat shape this service
// mints as well as the nested realm_access and resource_access shapes
// other issuers in the platform emit.
func (s *jwtService) VerifyAccessToken(tokenString string) (*service.AccessClaims, error) {
	if tokenString == "" {
		return nil, service.ErrTokenEmpty
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, classifyJWTError(err)
	}
	if !token.Valid {
		return nil, service.ErrTokenMalformed
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return nil, service.ErrTokenMalformed
	}
	username, _ := claims["username"].(string)

	return &service.AccessClaims{
		UserID:   subject,
		Username: username,
		Roles:    ExtractRoleClaims(claims),
	}, nil
}

// NewRefreshToken generates an opaque random token string.
func (s *jwtService) NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generate refresh token")
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken returns the SHA-256 hex digest stored in place of the raw token.
func (s *jwtService) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// AccessTokenTTL returns the configured access token lifetime.
func (s *jwtService) AccessTokenTTL() time.Duration {
	return s.accessTTL
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (s *jwtService) RefreshTokenTTL() time.Duration {
	return s.refreshTTL
}

// classifyJWTError folds the jwt/v5 error set into the small taxonomy the
// rest of the system reasons about. Expiry takes precedence because the
// parser can report it joined with other validation errors.
func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return service.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return service.ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return service.ErrTokenMalformed
	default:
		return service.ErrTokenMalformed
	}
}
