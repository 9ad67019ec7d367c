package middleware

import (
	"log/slog"
	"strings"

	"gatehouse/internal/domain/entity"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/service"
	"gatehouse/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// principalKey is the echo context key holding the authenticated principal.
const principalKey = "principal"

// AuthMiddleware provides middleware for access token authentication and
// role-based authorization.
//
// Authenticate is deliberately fail-open: a missing or invalid token
// leaves the request anonymous rather than rejecting it, so public routes
// stay reachable. The Require* policies are fail-closed and decide per
// route what an anonymous request may do.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	logger   *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, logger: logger}
}

// Authenticate resolves the Bearer token into a principal when present
// and valid. It never rejects the request itself.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			metrics.TokenVerificationsTotal.WithLabelValues("empty").Inc()

			return next(c)
		}

		claims, err := m.tokenSvc.VerifyAccessToken(tokenString)
		if err != nil {
			metrics.TokenVerificationsTotal.WithLabelValues(verifyResultLabel(err)).Inc()
			m.logger.Debug("Access token rejected, continuing as anonymous",
				slog.String("reason", err.Error()),
				slog.String("path", c.Request().URL.Path),
			)

			return next(c)
		}

		metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
		c.Set(principalKey, &entity.Principal{
			UserID:   claims.UserID,
			Username: claims.Username,
			Roles:    claims.Roles,
		})

		return next(c)
	}
}

// RequireAuth rejects anonymous requests.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentPrincipal(c) == nil {
			return domainerrors.ErrUnauthorized
		}

		return next(c)
	}
}

// RequireRole rejects requests whose principal lacks the given role.
// Anonymous requests get 401, authenticated ones without the role 403.
func (m *AuthMiddleware) RequireRole(role string) echo.MiddlewareFunc {
	role = entity.NormalizeRoleName(role)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := CurrentPrincipal(c)
			if principal == nil {
				return domainerrors.ErrUnauthorized
			}
			if !principal.HasRole(role) {
				return domainerrors.ErrForbidden
			}

			return next(c)
		}
	}
}

// RequireSelfOrAdmin allows the request when the principal is an admin or
// when the path parameter names the principal's own user ID.
func (m *AuthMiddleware) RequireSelfOrAdmin(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := CurrentPrincipal(c)
			if principal == nil {
				return domainerrors.ErrUnauthorized
			}
			if !principal.IsAdmin() && c.Param(param) != principal.UserID {
				return domainerrors.ErrForbidden
			}

			return next(c)
		}
	}
}

// CurrentPrincipal returns the authenticated principal, or nil for
// anonymous requests.
func CurrentPrincipal(c echo.Context) *entity.Principal {
	principal, _ := c.Get(principalKey).(*entity.Principal)

	return principal
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return ""
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}

	return strings.TrimSpace(token)
}

func verifyResultLabel(err error) string {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		return "expired"
	case errors.Is(err, service.ErrTokenSignature):
		return "signature"
	case errors.Is(err, service.ErrTokenEmpty):
		return "empty"
	default:
		return "malformed"
	}
}
