package permissions

import (
	"testing"

	"covent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tmpl(id, name string) models.CodeTemplate {
	return models.CodeTemplate{Base: models.Base{ID: id}, Name: name}
}

func TestRemapCodesKeepsIdentifierMatches(t *testing.T) {
	templates := []models.CodeTemplate{tmpl("a1", "VIP")}
	codes := map[string]models.CodePermission{
		"a1": {Generate: true, Limit: 5},
	}

	got := RemapCodes(codes, templates)

	assert.Equal(t, models.CodePermission{Generate: true, Limit: 5}, got["a1"])
	assert.Len(t, got, 1)
}

func TestRemapCodesRekeysLegacyNames(t *testing.T) {
	templates := []models.CodeTemplate{tmpl("a1", "VIP"), tmpl("a2", "Guest")}
	codes := map[string]models.CodePermission{
		"VIP": {Unlimited: true},
	}

	got := RemapCodes(codes, templates)

	require.Contains(t, got, "a1")
	assert.Equal(t, models.CodePermission{Unlimited: true}, got["a1"])
	assert.NotContains(t, got, "VIP")
	// Guest never configured, deny-filled
	assert.Equal(t, models.CodePermission{}, got["a2"])
}

func TestRemapCodesDropsGhostEntries(t *testing.T) {
	templates := []models.CodeTemplate{tmpl("a1", "VIP")}
	codes := map[string]models.CodePermission{
		"deleted-id":   {Generate: true},
		"Deleted Name": {Generate: true},
	}

	got := RemapCodes(codes, templates)

	assert.Len(t, got, 1)
	assert.Equal(t, models.CodePermission{}, got["a1"])
}

func TestRemapCodesIdentifierWinsOverName(t *testing.T) {
	// "a1" is both a configured identifier and another template's name; the
	// identifier entry must not be shadowed by the name remap.
	templates := []models.CodeTemplate{tmpl("a1", "VIP"), tmpl("a2", "a1")}
	codes := map[string]models.CodePermission{
		"a1": {Generate: true},
	}

	got := RemapCodes(codes, templates)

	assert.Equal(t, models.CodePermission{Generate: true}, got["a1"])
	assert.Equal(t, models.CodePermission{}, got["a2"])
}

func TestRemapCodesDuplicateNamesFirstInOrderWins(t *testing.T) {
	templates := []models.CodeTemplate{tmpl("a1", "VIP"), tmpl("a2", "VIP")}
	codes := map[string]models.CodePermission{
		"VIP": {Generate: true, Limit: 2},
	}

	got := RemapCodes(codes, templates)

	assert.Equal(t, models.CodePermission{Generate: true, Limit: 2}, got["a1"])
	assert.Equal(t, models.CodePermission{}, got["a2"])
}

func TestRemapCodesDenyFillsEveryTemplate(t *testing.T) {
	templates := []models.CodeTemplate{tmpl("a1", "VIP"), tmpl("a2", "Guest"), tmpl("a3", "Backstage")}

	got := RemapCodes(map[string]models.CodePermission{}, templates)

	require.Len(t, got, 3)
	for _, tc := range templates {
		assert.Equal(t, models.CodePermission{}, got[tc.ID])
	}
}

func TestRemapCodesEmptyTemplates(t *testing.T) {
	got := RemapCodes(map[string]models.CodePermission{
		"anything": {Generate: true},
	}, nil)

	assert.Empty(t, got)
	assert.NotNil(t, got)
}
