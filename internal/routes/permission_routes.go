package routes

import (
	"covent/internal/api/middleware"
	"covent/internal/handlers"
	"covent/internal/permissions"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// SetupPermissionRoutes mounts permission resolution and grant management
// under an already-authenticated group.
func SetupPermissionRoutes(api *echo.Group, db *gorm.DB, resolver *permissions.Resolver) {
	handler := handlers.NewPermissionHandler(db, resolver)

	perms := api.Group("/permissions")
	perms.GET("/resolve", handler.Resolve)
	perms.POST("/resolve-batch", handler.ResolveBatch)

	// Grant reads and writes operate on the host brand's own events, so they
	// are gated on the own-brand record, not an event-scoped one.
	grants := api.Group("/events/:id/cohosts/:brandId")
	grants.GET("/permissions", handler.GetCoHostGrant)

	grantWrites := grants.Group("")
	grantWrites.Use(middleware.RequireBrandPermission(resolver, middleware.CanManageEvents))
	grantWrites.PUT("/permissions", handler.SaveCoHostGrant)
	grantWrites.POST("/roles/:roleId/import-defaults", handler.ImportCoHostDefaults)

	roleCopy := api.Group("/roles/:id/copy-from/:sourceId")
	roleCopy.Use(middleware.RequireBrandPermission(resolver, middleware.CanManageTeam))
	roleCopy.POST("", handler.CopyRolePermissions)
}
