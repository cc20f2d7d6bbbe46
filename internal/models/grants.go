package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// CoHostGrant is one element of an event's coHostRolePermissions array: the
// host's configured permissions for every role of one co-host brand. Saving a
// grant replaces the whole element for that brand, never patches it.
type CoHostGrant struct {
	BrandID         string      `json:"brandId"`
	RolePermissions []RoleGrant `json:"rolePermissions"`
}

// RoleGrant holds the stored permission record for one co-host role. The role
// is referenced by identifier only; dangling references simply never match.
// Permissions stays raw because stored grants span several schema generations.
type RoleGrant struct {
	RoleID      string          `json:"roleId"`
	Permissions json.RawMessage `json:"permissions"`
}

// CoHostGrants decodes the event's stored grant array. Malformed or absent
// JSON decodes to no grants; resolution then falls back to the parent event
// or to the all-false default.
func (e *Event) CoHostGrants() []CoHostGrant {
	if len(e.CoHostRolePermissions) == 0 {
		return nil
	}
	var grants []CoHostGrant
	if err := json.Unmarshal(e.CoHostRolePermissions, &grants); err != nil {
		return nil
	}
	return grants
}

// GrantForBrand returns the grant entry for one co-host brand, or nil.
func (e *Event) GrantForBrand(brandID string) *CoHostGrant {
	for _, grant := range e.CoHostGrants() {
		if grant.BrandID == brandID {
			g := grant
			return &g
		}
	}
	return nil
}

// SetCoHostGrant replaces the grant entry for one brand wholesale, keeping
// every other brand's entry untouched.
func (e *Event) SetCoHostGrant(brandID string, rolePermissions []RoleGrant) error {
	grants := e.CoHostGrants()
	replaced := false
	for i := range grants {
		if grants[i].BrandID == brandID {
			grants[i].RolePermissions = rolePermissions
			replaced = true
			break
		}
	}
	if !replaced {
		grants = append(grants, CoHostGrant{BrandID: brandID, RolePermissions: rolePermissions})
	}

	raw, err := json.Marshal(grants)
	if err != nil {
		return err
	}
	e.CoHostRolePermissions = datatypes.JSON(raw)
	return nil
}
