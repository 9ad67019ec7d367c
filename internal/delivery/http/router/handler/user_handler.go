package handler

import (
	"log/slog"
	"net/http"

	"gatehouse/internal/delivery/http/middleware"
	"gatehouse/internal/delivery/http/response"
	"gatehouse/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UserHandler holds dependencies for user administration endpoints.
type UserHandler struct {
	userUC    usecase.UserUsecase
	sessionUC usecase.SessionUsecase
	logger    *slog.Logger
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(userUC usecase.UserUsecase, sessionUC usecase.SessionUsecase, logger *slog.Logger) *UserHandler {
	return &UserHandler{userUC: userUC, sessionUC: sessionUC, logger: logger}
}

type roleChangeRequest struct {
	Role string `json:"role" validate:"required,max=64"`
}

// GetUser returns a user by ID.
func (h *UserHandler) GetUser(c echo.Context) error {
	output, err := h.userUC.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "User retrieved successfully")
}

// DeleteUser soft-deletes a user and revokes their sessions.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	deletedBy := ""
	if principal := middleware.CurrentPrincipal(c); principal != nil {
		deletedBy = principal.UserID
	}

	if err := h.userUC.DeleteUser(c.Request().Context(), c.Param("id"), deletedBy); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"status": "deleted"}, "User deleted successfully")
}

// AssignRole grants a role to a user.
func (h *UserHandler) AssignRole(c echo.Context) error {
	var req roleChangeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid role input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	changedBy := ""
	if principal := middleware.CurrentPrincipal(c); principal != nil {
		changedBy = principal.UserID
	}

	output, err := h.userUC.AssignRole(c.Request().Context(), c.Param("id"), req.Role, changedBy)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Role assigned successfully")
}

// RemoveRole revokes a role from a user.
func (h *UserHandler) RemoveRole(c echo.Context) error {
	changedBy := ""
	if principal := middleware.CurrentPrincipal(c); principal != nil {
		changedBy = principal.UserID
	}

	output, err := h.userUC.RemoveRole(c.Request().Context(), c.Param("id"), c.Param("name"), changedBy)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Role removed successfully")
}

// ListSessions returns the user's active sessions.
func (h *UserHandler) ListSessions(c echo.Context) error {
	output, err := h.sessionUC.ListSessions(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Sessions retrieved successfully")
}

// RevokeSessions logs a user out of every device.
func (h *UserHandler) RevokeSessions(c echo.Context) error {
	if err := h.sessionUC.LogoutAll(c.Request().Context(), c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"status": "sessions_revoked"}, "Sessions revoked successfully")
}
