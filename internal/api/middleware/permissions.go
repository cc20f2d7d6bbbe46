package middleware

import (
	"net/http"

	"covent/internal/models"
	"covent/internal/permissions"

	"github.com/labstack/echo/v4"
)

// PermissionCheck is a predicate over a resolved permission record.
type PermissionCheck func(models.PermissionRecord) bool

// Named predicates for the route registry.
func CanViewAnalytics(rec models.PermissionRecord) bool { return rec.Analytics.View }
func CanUseScanner(rec models.PermissionRecord) bool    { return rec.Scanner.Use }
func CanAccessTables(rec models.PermissionRecord) bool  { return rec.Tables.Access }
func CanManageTables(rec models.PermissionRecord) bool  { return rec.Tables.Manage }
func CanEditBattles(rec models.PermissionRecord) bool   { return rec.Battles.Edit }

func CanManageEvents(rec models.PermissionRecord) bool {
	return rec.Events != nil && (rec.Events.Create || rec.Events.Edit || rec.Events.Delete)
}

func CanManageTeam(rec models.PermissionRecord) bool {
	return rec.Team != nil && rec.Team.Manage
}

// RequireBrandPermission gates a route on the caller's own-brand record.
func RequireBrandPermission(resolver *permissions.Resolver, check PermissionCheck) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if HasAdminAccess(c) {
				return next(c)
			}

			rec, err := resolver.Resolve(c.Request().Context(), GetUserID(c), GetBrandID(c), "", false)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "permission resolution failed")
			}
			if !check(rec) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}

// RequireEventPermission gates a route on the record resolved for the event in
// the :id path parameter. Co-host callers pass coHost=true and are resolved
// through the event's grant for their brand.
func RequireEventPermission(resolver *permissions.Resolver, check PermissionCheck) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if HasAdminAccess(c) {
				return next(c)
			}

			eventID := c.Param("id")
			if eventID == "" {
				eventID = c.QueryParam("eventId")
			}
			isCoHost := c.QueryParam("coHost") == "true"

			rec, err := resolver.Resolve(c.Request().Context(), GetUserID(c), GetBrandID(c), eventID, isCoHost)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "permission resolution failed")
			}
			if !check(rec) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}
