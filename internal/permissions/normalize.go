package permissions

import (
	"strconv"

	"covent/internal/models"
)

// Normalize turns a raw stored permission payload into the canonical record.
// Missing groups and fields default to false, unknown fields are dropped, and
// the Events/Team groups are carried only when the source carried them at all:
// a brand's own roles always do, co-host grants never do. When templates is
// non-nil the codes mapping is additionally remapped against it.
//
// Normalize is idempotent: feeding its output back in with the same template
// list yields an identical record.
func Normalize(raw interface{}, templates []models.CodeTemplate) models.PermissionRecord {
	m := Coerce(raw, true)
	if len(m) == 0 {
		rec := models.DefaultPermissionRecord()
		if templates != nil {
			rec.Codes = RemapCodes(rec.Codes, templates)
		}
		return rec
	}

	rec := models.DefaultPermissionRecord()
	rec.Codes = NormalizeCodes(m["codes"])

	rec.Analytics.View = boolField(m, "analytics", "view")
	rec.Scanner.Use = boolField(m, "scanner", "use")
	rec.Tables.Access = boolField(m, "tables", "access")
	rec.Tables.Manage = boolField(m, "tables", "manage")
	rec.Tables.Summary = boolField(m, "tables", "summary")
	rec.Battles.View = boolField(m, "battles", "view")
	rec.Battles.Edit = boolField(m, "battles", "edit")
	rec.Battles.Delete = boolField(m, "battles", "delete")

	if _, present := m["events"]; present {
		rec.Events = &models.EventPermissions{
			Create: boolField(m, "events", "create"),
			Edit:   boolField(m, "events", "edit"),
			Delete: boolField(m, "events", "delete"),
			View:   boolField(m, "events", "view"),
		}
	}
	if _, present := m["team"]; present {
		rec.Team = &models.TeamPermissions{
			Manage: boolField(m, "team", "manage"),
			View:   boolField(m, "team", "view"),
		}
	}

	if templates != nil {
		rec.Codes = RemapCodes(rec.Codes, templates)
	}
	return rec
}

// NormalizeCodes coerces a raw codes mapping into typed per-template entries.
// Unknown fields on an entry are dropped; missing ones default.
func NormalizeCodes(raw interface{}) map[string]models.CodePermission {
	coerced := Coerce(raw, true)
	out := make(map[string]models.CodePermission, len(coerced))
	for key, v := range coerced {
		entry := Coerce(v, false)
		out[key] = models.CodePermission{
			Generate:  asBool(entry["generate"]),
			Limit:     asInt(entry["limit"]),
			Unlimited: asBool(entry["unlimited"]),
		}
	}
	return out
}

func boolField(m map[string]interface{}, group, field string) bool {
	g, ok := m[group].(map[string]interface{})
	if !ok {
		return false
	}
	return asBool(g[field])
}

// asBool accepts the shapes legacy records stored booleans as.
func asBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		return t == "true" || t == "1"
	default:
		return false
	}
}

func asInt(v interface{}) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
		return 0
	default:
		return 0
	}
}
