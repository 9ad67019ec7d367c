package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"gatehouse/internal/domain/entity"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/service"
	mockservice "gatehouse/internal/mocks/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, authorization string) echo.Context {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	return e.NewContext(req, httptest.NewRecorder())
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestAuthenticate_NoTokenStaysAnonymous(t *testing.T) {
	tokenSvc := new(mockservice.MockTokenService)
	m := NewAuthMiddleware(tokenSvc, slog.Default())

	c := newTestContext(t, "")
	require.NoError(t, m.Authenticate(okHandler)(c))

	assert.Nil(t, CurrentPrincipal(c))
	tokenSvc.AssertNotCalled(t, "VerifyAccessToken")
}

func TestAuthenticate_InvalidTokenStaysAnonymous(t *testing.T) {
	tokenSvc := new(mockservice.MockTokenService)
	tokenSvc.On("VerifyAccessToken", "bad-token").Return(nil, service.ErrTokenSignature)
	m := NewAuthMiddleware(tokenSvc, slog.Default())

	c := newTestContext(t, "Bearer bad-token")
	require.NoError(t, m.Authenticate(okHandler)(c))

	assert.Nil(t, CurrentPrincipal(c))
	tokenSvc.AssertExpectations(t)
}

func TestAuthenticate_ValidTokenSetsPrincipal(t *testing.T) {
	tokenSvc := new(mockservice.MockTokenService)
	tokenSvc.On("VerifyAccessToken", "good-token").Return(&service.AccessClaims{
		UserID:   "user-1",
		Username: "alice",
		Roles:    []string{"ADMIN", "GUEST"},
	}, nil)
	m := NewAuthMiddleware(tokenSvc, slog.Default())

	c := newTestContext(t, "Bearer good-token")
	require.NoError(t, m.Authenticate(okHandler)(c))

	principal := CurrentPrincipal(c)
	require.NotNil(t, principal)
	assert.Equal(t, "user-1", principal.UserID)
	assert.Equal(t, "alice", principal.Username)
	assert.True(t, principal.IsAdmin())
}

func TestAuthenticate_IgnoresNonBearerHeader(t *testing.T) {
	tokenSvc := new(mockservice.MockTokenService)
	m := NewAuthMiddleware(tokenSvc, slog.Default())

	c := newTestContext(t, "Basic dXNlcjpwYXNz")
	require.NoError(t, m.Authenticate(okHandler)(c))

	assert.Nil(t, CurrentPrincipal(c))
	tokenSvc.AssertNotCalled(t, "VerifyAccessToken")
}

func TestRequireAuth(t *testing.T) {
	m := NewAuthMiddleware(new(mockservice.MockTokenService), slog.Default())

	t.Run("rejects anonymous", func(t *testing.T) {
		c := newTestContext(t, "")
		err := m.RequireAuth(okHandler)(c)
		assert.True(t, errors.Is(err, domainerrors.ErrUnauthorized))
	})

	t.Run("passes authenticated", func(t *testing.T) {
		c := newTestContext(t, "")
		c.Set(principalKey, &entity.Principal{UserID: "user-1"})
		assert.NoError(t, m.RequireAuth(okHandler)(c))
	})
}

func TestRequireRole(t *testing.T) {
	m := NewAuthMiddleware(new(mockservice.MockTokenService), slog.Default())
	guard := m.RequireRole("admin")(okHandler)

	t.Run("anonymous gets unauthorized", func(t *testing.T) {
		c := newTestContext(t, "")
		assert.True(t, errors.Is(guard(c), domainerrors.ErrUnauthorized))
	})

	t.Run("missing role gets forbidden", func(t *testing.T) {
		c := newTestContext(t, "")
		c.Set(principalKey, &entity.Principal{UserID: "user-1", Roles: []string{"GUEST"}})
		assert.True(t, errors.Is(guard(c), domainerrors.ErrForbidden))
	})

	t.Run("role name is case-insensitive", func(t *testing.T) {
		c := newTestContext(t, "")
		c.Set(principalKey, &entity.Principal{UserID: "user-1", Roles: []string{"ADMIN"}})
		assert.NoError(t, guard(c))
	})
}

func TestRequireSelfOrAdmin(t *testing.T) {
	m := NewAuthMiddleware(new(mockservice.MockTokenService), slog.Default())
	guard := m.RequireSelfOrAdmin("id")(okHandler)

	withParam := func(c echo.Context, id string) {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}

	t.Run("anonymous gets unauthorized", func(t *testing.T) {
		c := newTestContext(t, "")
		withParam(c, "user-1")
		assert.True(t, errors.Is(guard(c), domainerrors.ErrUnauthorized))
	})

	t.Run("self passes", func(t *testing.T) {
		c := newTestContext(t, "")
		withParam(c, "user-1")
		c.Set(principalKey, &entity.Principal{UserID: "user-1", Roles: []string{"GUEST"}})
		assert.NoError(t, guard(c))
	})

	t.Run("admin passes for any user", func(t *testing.T) {
		c := newTestContext(t, "")
		withParam(c, "user-2")
		c.Set(principalKey, &entity.Principal{UserID: "user-1", Roles: []string{"ADMIN"}})
		assert.NoError(t, guard(c))
	})

	t.Run("other user gets forbidden", func(t *testing.T) {
		c := newTestContext(t, "")
		withParam(c, "user-2")
		c.Set(principalKey, &entity.Principal{UserID: "user-1", Roles: []string{"GUEST"}})
		assert.True(t, errors.Is(guard(c), domainerrors.ErrForbidden))
	})
}
