package handler

import (
	"log/slog"
	"net/http"

	"gatehouse/internal/delivery/http/response"
	"gatehouse/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// RoleHandler holds dependencies for role registry endpoints.
type RoleHandler struct {
	uc     usecase.RoleUsecase
	logger *slog.Logger
}

// NewRoleHandler is the constructor for RoleHandler, injected by Fx.
func NewRoleHandler(uc usecase.RoleUsecase, logger *slog.Logger) *RoleHandler {
	return &RoleHandler{uc: uc, logger: logger}
}

type createRoleRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

// CreateRole registers a new custom role.
func (h *RoleHandler) CreateRole(c echo.Context) error {
	var req createRoleRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid role input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.uc.CreateRole(c.Request().Context(), req.Name)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output, "Role created successfully")
}

// ListRoles returns all active roles.
func (h *RoleHandler) ListRoles(c echo.Context) error {
	output, err := h.uc.ListRoles(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Roles retrieved successfully")
}

// DeleteRole removes a custom role. System-defined roles refuse deletion.
func (h *RoleHandler) DeleteRole(c echo.Context) error {
	if err := h.uc.DeleteRole(c.Request().Context(), c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"status": "deleted"}, "Role deleted successfully")
}
