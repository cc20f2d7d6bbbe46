package api

import (
	"net/http"

	"covent/internal/api/middleware"
	"covent/internal/api/registry"
	"covent/internal/routes"

	_ "covent/docs/swagger"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Covent API")
	})
	// Health check
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	api := s.echo.Group("/api/v1")
	auth := middleware.NewAuthMiddleware(s.config.JWT.Secret)
	api.Use(auth.Middleware())

	// CRUD routes for brand-scoped models
	registry.RegisterCRUDRoutes(api, s.db, s.resolver)

	// Permission resolution, grants and inheritance actions
	routes.SetupPermissionRoutes(api, s.db, s.resolver)
}
