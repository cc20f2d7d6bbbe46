package routes

import (
	"covent/internal/api/middleware"
	"covent/internal/config"
	"covent/internal/handlers"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func SetupAuthRoutes(e *echo.Echo, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db)

	base := e.Group("/api/v1")

	// Public auth routes group
	auth := base.Group("/auth")
	users := base.Group("/users")

	// Public routes (no auth required)
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/accept/:code", authHandler.AcceptInvite)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected auth routes (require authentication)
	protectedAuth := users.Group("")
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	protectedAuth.Use(authMiddleware.Middleware())

	protectedAuth.POST("/invite", authHandler.InviteUser)
	protectedAuth.DELETE("/invite/:id", authHandler.DeleteInvite)
	protectedAuth.GET("/me", authHandler.GetMe) // Get current user - accessible to any authenticated user
}
