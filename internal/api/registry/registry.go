package registry

import (
	"github.com/labstack/echo/v4"

	"covent/internal/api/controllers"
	"covent/internal/api/middleware"
	"covent/internal/models"
	"covent/internal/permissions"
	"covent/internal/services"

	"gorm.io/gorm"
)

// RegisterCRUDRoutes registers CRUD routes for the brand-scoped models. Read
// routes only require brand membership (the auth middleware); writes are
// gated on the caller's resolved permission record.
func RegisterCRUDRoutes(g *echo.Group, db *gorm.DB, resolver *permissions.Resolver) {
	// Brands
	brandService := services.NewBaseService(db, models.Brand{})
	brandController := controllers.NewBaseController(brandService)
	brandGroup := g.Group("/brands")
	brandGroup.GET("", brandController.List)
	brandGroup.GET("/:id", brandController.Get)

	// Events
	eventService := services.NewBaseService(db, models.Event{})
	eventController := controllers.NewBaseController(eventService)
	eventGroup := g.Group("/events")
	eventGroup.GET("", eventController.List)
	eventGroup.GET("/:id", eventController.Get)

	eventWriteGroup := eventGroup.Group("")
	eventWriteGroup.Use(middleware.RequireBrandPermission(resolver, middleware.CanManageEvents))
	eventWriteGroup.POST("", eventController.Create)
	eventWriteGroup.PUT("/:id", eventController.Update)
	eventWriteGroup.DELETE("/:id", eventController.Delete)

	// Roles
	roleService := services.NewBaseService(db, models.Role{})
	roleController := controllers.NewBaseController(roleService)
	roleGroup := g.Group("/roles")
	roleGroup.GET("", roleController.List)
	roleGroup.GET("/:id", roleController.Get)

	roleWriteGroup := roleGroup.Group("")
	roleWriteGroup.Use(middleware.RequireBrandPermission(resolver, middleware.CanManageTeam))
	roleWriteGroup.POST("", roleController.Create)
	roleWriteGroup.PUT("/:id", roleController.Update)

	// Code templates
	templateService := services.NewBaseService(db, models.CodeTemplate{})
	templateController := controllers.NewBaseController(templateService)
	templateGroup := g.Group("/code-templates")
	templateGroup.GET("", templateController.List)
	templateGroup.GET("/:id", templateController.Get)

	templateWriteGroup := templateGroup.Group("")
	templateWriteGroup.Use(middleware.RequireBrandPermission(resolver, middleware.CanManageEvents))
	templateWriteGroup.POST("", templateController.Create)
	templateWriteGroup.PUT("/:id", templateController.Update)
	templateWriteGroup.DELETE("/:id", templateController.Delete)

	// Brand invitations
	invitationService := services.NewBaseService(db, models.BrandInvite{})
	invitationController := controllers.NewBaseController(invitationService)
	invitationGroup := g.Group("/brand-invitations")
	invitationGroup.GET("", invitationController.List)

	invitationWriteGroup := invitationGroup.Group("")
	invitationWriteGroup.Use(middleware.RequireBrandPermission(resolver, middleware.CanManageTeam))
	invitationWriteGroup.DELETE("/:id", invitationController.Delete)
}
