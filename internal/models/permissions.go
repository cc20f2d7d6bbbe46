package models

import (
	"github.com/mohae/deepcopy"
)

// PermissionRecord is the canonical permission shape returned by every
// resolution path. Every fixed group is always present with concrete booleans;
// Codes is keyed by code-template ID and may legitimately be empty. Events and
// Team are carried only on a brand's own roles, never on co-host grants, which
// is how downstream authorization code tells the two apart.
type PermissionRecord struct {
	Analytics AnalyticsPermissions      `json:"analytics"`
	Scanner   ScannerPermissions        `json:"scanner"`
	Tables    TablePermissions          `json:"tables"`
	Battles   BattlePermissions         `json:"battles"`
	Codes     map[string]CodePermission `json:"codes"`
	Events    *EventPermissions         `json:"events,omitempty"`
	Team      *TeamPermissions          `json:"team,omitempty"`
}

// CodePermission is the per-code-template generation entitlement.
type CodePermission struct {
	Generate  bool `json:"generate"`
	Limit     int  `json:"limit"`
	Unlimited bool `json:"unlimited"`
}

type AnalyticsPermissions struct {
	View bool `json:"view"`
}

type ScannerPermissions struct {
	Use bool `json:"use"`
}

type TablePermissions struct {
	Access  bool `json:"access"`
	Manage  bool `json:"manage"`
	Summary bool `json:"summary"`
}

type BattlePermissions struct {
	View   bool `json:"view"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

type EventPermissions struct {
	Create bool `json:"create"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
	View   bool `json:"view"`
}

type TeamPermissions struct {
	Manage bool `json:"manage"`
	View   bool `json:"view"`
}

// DefaultPermissionRecord returns the all-false record used on every
// fail-closed path. It never includes the Events or Team groups.
func DefaultPermissionRecord() PermissionRecord {
	return PermissionRecord{
		Codes: map[string]CodePermission{},
	}
}

// DefaultOwnPermissionRecord returns the all-false record for a brand's own
// roles, which always carry the Events and Team groups.
func DefaultOwnPermissionRecord() PermissionRecord {
	rec := DefaultPermissionRecord()
	rec.Events = &EventPermissions{}
	rec.Team = &TeamPermissions{}
	return rec
}

// FounderPermissionRecord returns the everything-true record assigned to the
// founder role when a brand is created.
func FounderPermissionRecord() PermissionRecord {
	return PermissionRecord{
		Analytics: AnalyticsPermissions{View: true},
		Scanner:   ScannerPermissions{Use: true},
		Tables:    TablePermissions{Access: true, Manage: true, Summary: true},
		Battles:   BattlePermissions{View: true, Edit: true, Delete: true},
		Codes:     map[string]CodePermission{},
		Events:    &EventPermissions{Create: true, Edit: true, Delete: true, View: true},
		Team:      &TeamPermissions{Manage: true, View: true},
	}
}

// Clone returns a structural deep copy of the record. Copying goes through
// the type, not a serialization round trip, so no field can silently drop out.
func (r PermissionRecord) Clone() PermissionRecord {
	cloned := deepcopy.Copy(r).(PermissionRecord)
	if cloned.Codes == nil {
		cloned.Codes = map[string]CodePermission{}
	}
	return cloned
}
