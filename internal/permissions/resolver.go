package permissions

import (
	"context"
	"sync"

	"covent/internal/models"
	console "covent/internal/utils/logger"
)

var log = console.New("PERMISSIONS")

// Resolver computes the effective permission record for a user acting on a
// brand, either within their own brand or as a co-host team member on another
// brand's event. It is stateless and request-scoped: every call is a pure
// function of its inputs plus point-in-time Directory reads, so resolved
// records are never cached across requests.
type Resolver struct {
	dir   Directory
	roles *RoleLookup
}

func NewResolver(dir Directory) *Resolver {
	return &Resolver{
		dir:   dir,
		roles: NewRoleLookup(dir),
	}
}

// Resolve returns the canonical permission record for a user on a brand and,
// for co-host resolution, an event. Missing entities, unconfigured grants and
// dangling references all resolve to the all-false default record with a nil
// error; errors are reserved for infrastructure failures.
func (r *Resolver) Resolve(ctx context.Context, userID, brandID, eventID string, isCoHost bool) (models.PermissionRecord, error) {
	role, err := r.roles.FindUserRole(ctx, userID, brandID)
	if err != nil {
		return models.DefaultPermissionRecord(), err
	}
	if role == nil {
		return models.DefaultPermissionRecord(), nil
	}

	if !isCoHost {
		// A brand's own roles are permission-complete; no event context needed.
		return Normalize(role.Permissions, nil), nil
	}

	if eventID == "" {
		log.Warn("co-host resolve for user %s brand %s without an event", userID, brandID)
		return models.DefaultPermissionRecord(), nil
	}

	event, err := r.dir.EventByID(ctx, eventID)
	if err != nil {
		return models.DefaultPermissionRecord(), err
	}
	if event == nil {
		return models.DefaultPermissionRecord(), nil
	}

	grantEvent := event
	if len(event.CoHostGrants()) == 0 && event.ParentEventID != "" {
		// A child with no grants of its own resolves against its parent, one
		// level only. A non-empty child array is authoritative and is never
		// merged with the parent.
		parent, err := r.dir.EventByID(ctx, event.ParentEventID)
		if err != nil {
			return models.DefaultPermissionRecord(), err
		}
		if parent != nil {
			grantEvent = parent
		}
	}

	grant := grantEvent.GrantForBrand(brandID)
	if grant == nil {
		return models.DefaultPermissionRecord(), nil
	}

	var matched *models.RoleGrant
	for i := range grant.RolePermissions {
		if grant.RolePermissions[i].RoleID == role.ID {
			matched = &grant.RolePermissions[i]
			break
		}
	}
	if matched == nil {
		// A host that has not configured this role gets nothing, not partial
		// or inherited access.
		return models.DefaultPermissionRecord(), nil
	}

	templates, err := r.dir.CodeTemplatesForEvent(ctx, event.BrandID, effectiveEventID(event))
	if err != nil {
		return models.DefaultPermissionRecord(), err
	}
	if templates == nil {
		templates = []models.CodeTemplate{}
	}
	return Normalize(matched.Permissions, templates), nil
}

// ResolveBatch resolves many events at once for list and summary views. The
// role is resolved once; own-brand resolution applies the same normalized
// record to every event, co-host resolution performs the grant lookup per
// event without parent fallback or template remapping. Results merge by event
// identifier regardless of completion order.
func (r *Resolver) ResolveBatch(ctx context.Context, userID, brandID string, eventIDs []string, isCoHost bool) (map[string]models.PermissionRecord, error) {
	out := make(map[string]models.PermissionRecord, len(eventIDs))

	role, err := r.roles.FindUserRole(ctx, userID, brandID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		for _, id := range eventIDs {
			out[id] = models.DefaultPermissionRecord()
		}
		return out, nil
	}

	if !isCoHost {
		rec := Normalize(role.Permissions, nil)
		for _, id := range eventIDs {
			out[id] = rec.Clone()
		}
		return out, nil
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, id := range eventIDs {
		wg.Add(1)
		go func(eventID string) {
			defer wg.Done()
			rec := r.batchGrantRecord(ctx, role, brandID, eventID)
			mu.Lock()
			out[eventID] = rec
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	return out, nil
}

// batchGrantRecord is the per-event leg of co-host batch resolution. Batch is
// for list views, not enforcement, so read failures degrade to the default
// record instead of failing the whole batch.
func (r *Resolver) batchGrantRecord(ctx context.Context, role *models.Role, brandID, eventID string) models.PermissionRecord {
	event, err := r.dir.EventByID(ctx, eventID)
	if err != nil {
		log.Warn("batch resolve: failed to load event %s: %v", eventID, err)
		return models.DefaultPermissionRecord()
	}
	if event == nil {
		return models.DefaultPermissionRecord()
	}

	grant := event.GrantForBrand(brandID)
	if grant == nil {
		return models.DefaultPermissionRecord()
	}
	for _, rg := range grant.RolePermissions {
		if rg.RoleID == role.ID {
			return Normalize(rg.Permissions, nil)
		}
	}
	return models.DefaultPermissionRecord()
}

// effectiveEventID is the identifier used for template scoping: occurrences
// of a recurring event share the parent's template set.
func effectiveEventID(event *models.Event) string {
	if event.ParentEventID != "" {
		return event.ParentEventID
	}
	return event.ID
}
