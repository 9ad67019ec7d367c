package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/config"
	"gatehouse/internal/domain/service"
)

func testConfig(secret []byte) *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			SigningSecret:     base64.StdEncoding.EncodeToString(secret),
			AccessTokenTTLMs:  int64(15 * time.Minute / time.Millisecond),
			RefreshTokenTTLMs: int64(24 * time.Hour / time.Millisecond),
		},
	}
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc, err := NewJWTService(testConfig([]byte("test_signing_secret_very_long_for_testing")))
	require.NoError(t, err)

	userID := uuid.NewString()

	token, err := svc.IssueAccessToken(userID, "alice", []string{"ADMIN", "GUEST"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, []string{"ADMIN", "GUEST"}, claims.Roles)
}

// Tokens minted by other issuers in the platform carry roles in nested
// realm_access / resource_access shapes; verification must read them all.
func TestJWTService_VerifyNestedRoleClaims(t *testing.T) {
	secret := []byte("test_signing_secret_very_long_for_testing")
	svc, err := NewJWTService(testConfig(secret))
	require.NoError(t, err)

	userID := uuid.NewString()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      userID,
		"username": "alice",
		"iat":      now.Unix(),
		"exp":      now.Add(time.Hour).Unix(),
		"realm_access": map[string]any{
			"roles": []any{"admin"},
		},
		"resource_access": map[string]any{
			"gatehouse": map[string]any{
				"roles": []any{"auditor", "admin"},
			},
		},
	})
	signed, err := token.SignedString(secret)
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, []string{"ADMIN", "AUDITOR"}, claims.Roles)
}

func TestJWTService_EmptySecret(t *testing.T) {
	_, err := NewJWTService(&config.Config{Auth: &config.AuthConfig{}})
	assert.Error(t, err)
}

func TestJWTService_EmptyToken(t *testing.T) {
	svc, err := NewJWTService(testConfig([]byte("test_signing_secret_very_long_for_testing")))
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken("")
	assert.ErrorIs(t, err, service.ErrTokenEmpty)
}

func TestJWTService_MalformedToken(t *testing.T) {
	svc, err := NewJWTService(testConfig([]byte("test_signing_secret_very_long_for_testing")))
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, service.ErrTokenMalformed)

	_, err = svc.VerifyAccessToken("garbage")
	assert.ErrorIs(t, err, service.ErrTokenMalformed)
}

func TestJWTService_BadSignature(t *testing.T) {
	issuer, err := NewJWTService(testConfig([]byte("first_signing_secret_very_long_for_testing")))
	require.NoError(t, err)
	verifier, err := NewJWTService(testConfig([]byte("other_signing_secret_very_long_for_testing")))
	require.NoError(t, err)

	token, err := issuer.IssueAccessToken(uuid.NewString(), "alice", nil)
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(token)
	assert.ErrorIs(t, err, service.ErrTokenSignature)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc, err := NewJWTService(testConfig([]byte("test_signing_secret_very_long_for_testing")))
	require.NoError(t, err)

	impl := svc.(*jwtService)
	past := time.Now().Add(-time.Hour)
	impl.now = func() time.Time { return past }

	token, err := svc.IssueAccessToken(uuid.NewString(), "alice", nil)
	require.NoError(t, err)

	impl.now = time.Now

	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, service.ErrTokenExpired)
}

func TestJWTService_NewRefreshToken(t *testing.T) {
	svc, err := NewJWTService(testConfig([]byte("test_signing_secret_very_long_for_testing")))
	require.NoError(t, err)

	first, err := svc.NewRefreshToken()
	require.NoError(t, err)
	second, err := svc.NewRefreshToken()
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)

	decoded, err := base64.RawURLEncoding.DecodeString(first)
	require.NoError(t, err)
	assert.Len(t, decoded, refreshTokenBytes)
}

func TestJWTService_HashToken(t *testing.T) {
	svc, err := NewJWTService(testConfig([]byte("test_signing_secret_very_long_for_testing")))
	require.NoError(t, err)

	hash := svc.HashToken("opaque-token")
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, svc.HashToken("opaque-token"))
	assert.NotEqual(t, hash, svc.HashToken("other-token"))
}

func TestJWTService_TTLs(t *testing.T) {
	svc, err := NewJWTService(testConfig([]byte("test_signing_secret_very_long_for_testing")))
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, svc.AccessTokenTTL())
	assert.Equal(t, 24*time.Hour, svc.RefreshTokenTTL())
}
