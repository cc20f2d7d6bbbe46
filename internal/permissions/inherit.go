package permissions

import (
	"context"
	"errors"
	"strings"

	"covent/internal/models"
)

// ErrRoleNotFound is returned by CopyRolePermissions when either role does
// not exist in the given brand. The caller must not persist anything on this
// error: unlike the resolve path, a copy has no meaningful fail-closed
// result, only a record that would overwrite the target.
var ErrRoleNotFound = errors.New("role not found in brand")

// Inheritance implements the two operator-invoked copy actions. Both are pure
// transformations over loaded data: they return a new record for the caller
// to persist and perform no authorization checks themselves.
type Inheritance struct {
	dir Directory
}

func NewInheritance(dir Directory) *Inheritance {
	return &Inheritance{dir: dir}
}

// CopyRolePermissions deep-clones one role's permission record onto another
// role within the same brand, wholesale. No field-level merging. A source or
// target that is missing or belongs to another brand yields ErrRoleNotFound.
func (e *Inheritance) CopyRolePermissions(ctx context.Context, brandID, sourceRoleID, targetRoleID string) (models.PermissionRecord, error) {
	source, err := e.dir.RoleByID(ctx, sourceRoleID)
	if err != nil {
		return models.DefaultOwnPermissionRecord(), err
	}
	target, err := e.dir.RoleByID(ctx, targetRoleID)
	if err != nil {
		return models.DefaultOwnPermissionRecord(), err
	}
	if source == nil || target == nil || source.BrandID != brandID || target.BrandID != brandID {
		return models.DefaultOwnPermissionRecord(), ErrRoleNotFound
	}

	return Normalize(source.Permissions, nil).Clone(), nil
}

// ImportCoHostDefaults builds an event grant record for one co-host role from
// the co-host brand's own role defaults. The co-host role is picked by
// case-insensitive name match against the target role, falling back to the
// co-host's founder role (when the target is a founder), then its default
// role, then its first role. Code entries are translated across the two
// brands' template identifier spaces by matching template names
// case-insensitively; entries with no host-side name match are dropped.
func (e *Inheritance) ImportCoHostDefaults(ctx context.Context, hostBrandID, coHostBrandID, targetRoleID, eventID string) (models.PermissionRecord, error) {
	targetRole, err := e.dir.RoleByID(ctx, targetRoleID)
	if err != nil {
		return models.DefaultPermissionRecord(), err
	}

	coRoles, err := e.dir.RolesByBrand(ctx, coHostBrandID)
	if err != nil {
		return models.DefaultPermissionRecord(), err
	}
	matched := matchCoHostRole(targetRole, coRoles)
	if matched == nil {
		return models.DefaultPermissionRecord(), nil
	}

	rec := Normalize(matched.Permissions, nil)
	// The result is a co-host grant record; it never carries the own-brand
	// Events and Team groups.
	rec.Events = nil
	rec.Team = nil

	coTemplates, err := e.dir.CodeTemplatesForBrand(ctx, coHostBrandID)
	if err != nil {
		return models.DefaultPermissionRecord(), err
	}
	hostTemplates, err := e.hostTemplates(ctx, hostBrandID, eventID)
	if err != nil {
		return models.DefaultPermissionRecord(), err
	}

	rec.Codes = translateCodes(rec.Codes, coTemplates, hostTemplates)
	return rec, nil
}

func (e *Inheritance) hostTemplates(ctx context.Context, hostBrandID, eventID string) ([]models.CodeTemplate, error) {
	if eventID != "" {
		event, err := e.dir.EventByID(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if event != nil {
			return e.dir.CodeTemplatesForEvent(ctx, hostBrandID, effectiveEventID(event))
		}
	}
	return e.dir.CodeTemplatesForBrand(ctx, hostBrandID)
}

func matchCoHostRole(targetRole *models.Role, coRoles []models.Role) *models.Role {
	if len(coRoles) == 0 {
		return nil
	}

	if targetRole != nil {
		for i := range coRoles {
			if strings.EqualFold(coRoles[i].Name, targetRole.Name) {
				return &coRoles[i]
			}
		}
		if targetRole.IsFounder {
			for i := range coRoles {
				if coRoles[i].IsFounder {
					return &coRoles[i]
				}
			}
		}
	}

	for i := range coRoles {
		if coRoles[i].IsDefault {
			return &coRoles[i]
		}
	}
	return &coRoles[0]
}

// translateCodes re-keys code entries from the co-host's identifier space to
// the host's: identifier to co-host template name, then name to the host
// template, first match in list order on duplicate names. This is the only
// place two brands' template identifier spaces meet.
func translateCodes(codes map[string]models.CodePermission, coTemplates, hostTemplates []models.CodeTemplate) map[string]models.CodePermission {
	coNames := make(map[string]string, len(coTemplates))
	for _, t := range coTemplates {
		coNames[t.ID] = t.Name
	}

	out := make(map[string]models.CodePermission, len(codes))
	for key, perm := range codes {
		name, known := coNames[key]
		if !known {
			// Legacy entries are keyed by the template name itself.
			name = key
		}
		if hostID := hostTemplateByName(hostTemplates, name); hostID != "" {
			if _, exists := out[hostID]; !exists {
				out[hostID] = perm
			}
		}
	}
	return out
}

func hostTemplateByName(templates []models.CodeTemplate, name string) string {
	for _, t := range templates {
		if strings.EqualFold(t.Name, name) {
			return t.ID
		}
	}
	return ""
}
