// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"gatehouse/internal/delivery/http/middleware"
	"gatehouse/internal/delivery/http/router/handler"
	"gatehouse/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	RoleHandler    *handler.RoleHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	roleHandler    *handler.RoleHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		userHandler:    params.UserHandler,
		roleHandler:    params.RoleHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Token extraction runs everywhere; route policies below decide
	// who gets in.
	e.Use(r.authMiddleware.Authenticate)

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh", r.authHandler.Refresh)
		authGroup.POST("/logout", r.authHandler.Logout)
	}

	api := e.Group("/api/v1")

	userGroup := api.Group("/users")
	{
		userGroup.GET("/:id", r.userHandler.GetUser, r.authMiddleware.RequireSelfOrAdmin("id"))
		userGroup.DELETE("/:id", r.userHandler.DeleteUser, r.authMiddleware.RequireRole(entity.RoleAdmin))
		userGroup.POST("/:id/roles", r.userHandler.AssignRole, r.authMiddleware.RequireRole(entity.RoleAdmin))
		userGroup.DELETE("/:id/roles/:name", r.userHandler.RemoveRole, r.authMiddleware.RequireRole(entity.RoleAdmin))
		userGroup.GET("/:id/sessions", r.userHandler.ListSessions, r.authMiddleware.RequireSelfOrAdmin("id"))
		userGroup.DELETE("/:id/sessions", r.userHandler.RevokeSessions, r.authMiddleware.RequireSelfOrAdmin("id"))
	}

	roleGroup := api.Group("/roles")
	{
		roleGroup.GET("", r.roleHandler.ListRoles, r.authMiddleware.RequireAuth)
		roleGroup.POST("", r.roleHandler.CreateRole, r.authMiddleware.RequireRole(entity.RoleAdmin))
		roleGroup.DELETE("/:id", r.roleHandler.DeleteRole, r.authMiddleware.RequireRole(entity.RoleAdmin))
	}
}
