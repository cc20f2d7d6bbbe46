package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"covent/internal/api/middleware"
	"covent/internal/models"
	"covent/internal/permissions"
	"covent/internal/services"
	"covent/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PermissionHandler exposes the resolution engine and the grant write side
// over HTTP. All endpoints are brand-scoped through the auth middleware.
type PermissionHandler struct {
	db       *gorm.DB
	resolver *permissions.Resolver
	inherit  *permissions.Inheritance
	grants   *services.GrantService
	dir      *services.GormDirectory
	log      *logger.Logger
}

func NewPermissionHandler(db *gorm.DB, resolver *permissions.Resolver) *PermissionHandler {
	dir := services.NewGormDirectory(db)
	return &PermissionHandler{
		db:       db,
		resolver: resolver,
		inherit:  permissions.NewInheritance(dir),
		grants:   services.NewGrantService(db),
		dir:      dir,
		log:      logger.New("PermissionHandler"),
	}
}

// Resolve returns the caller's effective permission record.
// @Summary Resolve effective permissions
// @Description Resolve the caller's permission record for their brand, optionally as a co-host on an event
// @Tags permissions
// @Produce json
// @Param eventId query string false "Event to resolve against (required for co-host resolution)"
// @Param coHost query boolean false "Resolve as co-host instead of own brand"
// @Success 200 {object} models.PermissionRecord
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /permissions/resolve [get]
func (h *PermissionHandler) Resolve(c echo.Context) error {
	userID := middleware.GetUserID(c)
	brandID := middleware.GetBrandID(c)
	eventID := c.QueryParam("eventId")
	isCoHost := c.QueryParam("coHost") == "true"

	record, err := h.resolver.Resolve(c.Request().Context(), userID, brandID, eventID, isCoHost)
	if err != nil {
		h.log.Error("resolve failed", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to resolve permissions"})
	}
	return c.JSON(http.StatusOK, record)
}

type ResolveBatchRequest struct {
	EventIDs []string `json:"eventIds" validate:"required,min=1,dive,uuid"`
	CoHost   bool     `json:"coHost"`
}

// ResolveBatch resolves the caller's record for many events at once.
// @Summary Resolve permissions for many events
// @Description Resolve the caller's permission record per event, keyed by event identifier
// @Tags permissions
// @Accept json
// @Produce json
// @Param request body ResolveBatchRequest true "Events to resolve"
// @Success 200 {object} map[string]models.PermissionRecord
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /permissions/resolve-batch [post]
func (h *PermissionHandler) ResolveBatch(c echo.Context) error {
	var req ResolveBatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	userID := middleware.GetUserID(c)
	brandID := middleware.GetBrandID(c)

	records, err := h.resolver.ResolveBatch(c.Request().Context(), userID, brandID, req.EventIDs, req.CoHost)
	if err != nil {
		h.log.Error("batch resolve failed", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to resolve permissions"})
	}
	return c.JSON(http.StatusOK, records)
}

// GetCoHostGrant returns the stored grant for one co-host brand on one event,
// with every role's record normalized against the event's current templates.
// @Summary Get a co-host grant
// @Description Get the normalized per-role permission grants for one co-host brand on an event
// @Tags permissions
// @Produce json
// @Param id path string true "Event ID"
// @Param brandId path string true "Co-host brand ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Event not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /events/{id}/cohosts/{brandId}/permissions [get]
func (h *PermissionHandler) GetCoHostGrant(c echo.Context) error {
	eventID := c.Param("id")
	coHostBrandID := c.Param("brandId")
	ctx := c.Request().Context()

	event, err := h.dir.EventByID(ctx, eventID)
	if err != nil {
		h.log.Error("failed to load event", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load event"})
	}
	if event == nil || event.BrandID != middleware.GetBrandID(c) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Event not found"})
	}

	templates, err := h.dir.CodeTemplatesForEvent(ctx, event.BrandID, eventTemplateScope(event))
	if err != nil {
		h.log.Error("failed to load templates", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load code templates"})
	}
	if templates == nil {
		templates = []models.CodeTemplate{}
	}

	out := make([]map[string]interface{}, 0)
	if grant := event.GrantForBrand(coHostBrandID); grant != nil {
		for _, rg := range grant.RolePermissions {
			out = append(out, map[string]interface{}{
				"roleId":      rg.RoleID,
				"permissions": permissions.Normalize(rg.Permissions, templates),
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"brandId":         coHostBrandID,
		"rolePermissions": out,
	})
}

type SaveCoHostGrantRequest struct {
	RolePermissions []models.RoleGrant `json:"rolePermissions" validate:"required"`
}

// SaveCoHostGrant replaces the grant for one co-host brand on one event.
// @Summary Save a co-host grant
// @Description Replace the per-role permission grants for one co-host brand on an event
// @Tags permissions
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param brandId path string true "Co-host brand ID"
// @Param request body SaveCoHostGrantRequest true "Role grants"
// @Success 200 {object} map[string]string "Grant saved"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Event not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /events/{id}/cohosts/{brandId}/permissions [put]
func (h *PermissionHandler) SaveCoHostGrant(c echo.Context) error {
	eventID := c.Param("id")
	coHostBrandID := c.Param("brandId")
	ctx := c.Request().Context()

	var req SaveCoHostGrantRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	event, err := h.dir.EventByID(ctx, eventID)
	if err != nil {
		h.log.Error("failed to load event", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load event"})
	}
	if event == nil || event.BrandID != middleware.GetBrandID(c) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Event not found"})
	}

	if _, err := h.grants.SaveCoHostGrant(ctx, eventID, coHostBrandID, req.RolePermissions); err != nil {
		h.log.Error("failed to save grant", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save grant"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Grant saved"})
}

// CopyRolePermissions copies one role's permissions onto a sibling role.
// @Summary Copy permissions between roles
// @Description Replace the target role's permissions with a deep copy of a sibling role's permissions
// @Tags permissions
// @Produce json
// @Param id path string true "Target role ID"
// @Param sourceId path string true "Source role ID"
// @Success 200 {object} models.PermissionRecord
// @Failure 404 {object} map[string]string "Role not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /roles/{id}/copy-from/{sourceId} [post]
func (h *PermissionHandler) CopyRolePermissions(c echo.Context) error {
	targetRoleID := c.Param("id")
	sourceRoleID := c.Param("sourceId")
	brandID := middleware.GetBrandID(c)
	ctx := c.Request().Context()

	record, err := h.inherit.CopyRolePermissions(ctx, brandID, sourceRoleID, targetRoleID)
	if errors.Is(err, permissions.ErrRoleNotFound) {
		// Nothing to copy; persisting here would wipe the target role.
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Role not found"})
	}
	if err != nil {
		h.log.Error("role copy failed", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to copy permissions"})
	}

	if err := h.persistRolePermissions(ctx, targetRoleID, brandID, record); err != nil {
		h.log.Error("failed to persist copied permissions", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save permissions"})
	}

	return c.JSON(http.StatusOK, record)
}

// ImportCoHostDefaults seeds an event grant for one co-host role from the
// co-host brand's own role defaults and saves it onto the event.
// @Summary Import co-host default permissions
// @Description Build a grant for one co-host role from the co-host brand's role defaults and save it on the event
// @Tags permissions
// @Produce json
// @Param id path string true "Event ID"
// @Param brandId path string true "Co-host brand ID"
// @Param roleId path string true "Co-host role ID"
// @Success 200 {object} models.PermissionRecord
// @Failure 404 {object} map[string]string "Event not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /events/{id}/cohosts/{brandId}/roles/{roleId}/import-defaults [post]
func (h *PermissionHandler) ImportCoHostDefaults(c echo.Context) error {
	eventID := c.Param("id")
	coHostBrandID := c.Param("brandId")
	roleID := c.Param("roleId")
	hostBrandID := middleware.GetBrandID(c)
	ctx := c.Request().Context()

	event, err := h.dir.EventByID(ctx, eventID)
	if err != nil {
		h.log.Error("failed to load event", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load event"})
	}
	if event == nil || event.BrandID != hostBrandID {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Event not found"})
	}

	record, err := h.inherit.ImportCoHostDefaults(ctx, hostBrandID, coHostBrandID, roleID, eventID)
	if err != nil {
		h.log.Error("import defaults failed", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to import defaults"})
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to encode permissions"})
	}

	grant := event.GrantForBrand(coHostBrandID)
	var rolePerms []models.RoleGrant
	if grant != nil {
		rolePerms = grant.RolePermissions
	}
	replaced := false
	for i := range rolePerms {
		if rolePerms[i].RoleID == roleID {
			rolePerms[i].Permissions = raw
			replaced = true
			break
		}
	}
	if !replaced {
		rolePerms = append(rolePerms, models.RoleGrant{RoleID: roleID, Permissions: raw})
	}

	if _, err := h.grants.SaveCoHostGrant(ctx, eventID, coHostBrandID, rolePerms); err != nil {
		h.log.Error("failed to save imported grant", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save grant"})
	}

	return c.JSON(http.StatusOK, record)
}

func (h *PermissionHandler) persistRolePermissions(ctx context.Context, roleID, brandID string, record models.PermissionRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return h.db.WithContext(ctx).Model(&models.Role{}).
		Where("id = ? AND brand_id = ?", roleID, brandID).
		Update("permissions", raw).Error
}

func eventTemplateScope(event *models.Event) string {
	if event.ParentEventID != "" {
		return event.ParentEventID
	}
	return event.ID
}
