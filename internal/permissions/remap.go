package permissions

import (
	"covent/internal/models"
)

// RemapCodes reconciles a codes mapping against the templates currently valid
// for an event. Identifier-keyed entries are kept, legacy name-keyed entries
// are re-keyed under the template's identifier, and entries referring to
// templates that no longer exist under either identity are dropped. When two
// templates share a name, the first in template-list order wins.
func RemapCodes(codes map[string]models.CodePermission, templates []models.CodeTemplate) map[string]models.CodePermission {
	byID := make(map[string]bool, len(templates))
	byName := make(map[string]string, len(templates))
	for _, t := range templates {
		byID[t.ID] = true
		if _, taken := byName[t.Name]; !taken {
			byName[t.Name] = t.ID
		}
	}

	out := make(map[string]models.CodePermission, len(templates))

	// Identifier matches first, so a legacy name entry can never shadow a
	// current identifier entry.
	for key, perm := range codes {
		if byID[key] {
			out[key] = perm
		}
	}
	for key, perm := range codes {
		if byID[key] {
			continue
		}
		id, known := byName[key]
		if !known {
			continue
		}
		if _, exists := out[id]; !exists {
			out[id] = perm
		}
	}

	denyFill(out, templates)
	return out
}

// denyFill inserts an explicit all-false entry for every template that has no
// configured entry. Templates created after a grant was saved must resolve to
// denial, never to an absent entry an authorization check could misread.
func denyFill(codes map[string]models.CodePermission, templates []models.CodeTemplate) {
	for _, t := range templates {
		if _, ok := codes[t.ID]; !ok {
			codes[t.ID] = models.CodePermission{}
		}
	}
}
