package permissions

import (
	"encoding/json"
	"testing"

	"covent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestNormalizeEmptyInputs(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
	}{
		{"nil", nil},
		{"empty map", map[string]interface{}{}},
		{"empty jsonb", datatypes.JSON(nil)},
		{"garbage string", "not-a-record"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input, nil)
			assert.Equal(t, models.DefaultPermissionRecord(), got)
			assert.Nil(t, got.Events)
			assert.Nil(t, got.Team)
		})
	}
}

func TestNormalizeEmptyInputDenyFillsTemplates(t *testing.T) {
	templates := []models.CodeTemplate{
		{Base: models.Base{ID: "t1"}, Name: "VIP"},
		{Base: models.Base{ID: "t2"}, Name: "Guest"},
	}

	got := Normalize(nil, templates)

	require.Len(t, got.Codes, 2)
	assert.Equal(t, models.CodePermission{}, got.Codes["t1"])
	assert.Equal(t, models.CodePermission{}, got.Codes["t2"])
}

func TestNormalizeGroups(t *testing.T) {
	raw := map[string]interface{}{
		"analytics": map[string]interface{}{"view": true},
		"tables":    map[string]interface{}{"access": true, "summary": "true"},
		"battles":   map[string]interface{}{"edit": 1},
		"unknown":   map[string]interface{}{"anything": true},
	}

	got := Normalize(raw, nil)

	assert.True(t, got.Analytics.View)
	assert.True(t, got.Tables.Access)
	assert.True(t, got.Tables.Summary)
	assert.False(t, got.Tables.Manage)
	assert.True(t, got.Battles.Edit)
	assert.False(t, got.Battles.View)
	assert.False(t, got.Scanner.Use)
}

func TestNormalizeEventsAndTeamOnlyWhenPresent(t *testing.T) {
	withGroups := Normalize(map[string]interface{}{
		"events": map[string]interface{}{"create": true},
		"team":   map[string]interface{}{"view": true},
	}, nil)
	require.NotNil(t, withGroups.Events)
	require.NotNil(t, withGroups.Team)
	assert.True(t, withGroups.Events.Create)
	assert.False(t, withGroups.Events.Delete)
	assert.True(t, withGroups.Team.View)

	withoutGroups := Normalize(map[string]interface{}{
		"analytics": map[string]interface{}{"view": true},
	}, nil)
	assert.Nil(t, withoutGroups.Events)
	assert.Nil(t, withoutGroups.Team)
}

func TestNormalizeCodesCoercion(t *testing.T) {
	got := NormalizeCodes(map[string]interface{}{
		"t1": map[string]interface{}{"generate": true, "limit": float64(25)},
		"t2": map[string]interface{}{"unlimited": "true", "limit": "10"},
		"t3": map[string]interface{}{"stale_field": true},
	})

	assert.Equal(t, models.CodePermission{Generate: true, Limit: 25}, got["t1"])
	assert.Equal(t, models.CodePermission{Unlimited: true, Limit: 10}, got["t2"])
	assert.Equal(t, models.CodePermission{}, got["t3"])
}

func TestNormalizeFromJSONB(t *testing.T) {
	raw, err := json.Marshal(map[string]interface{}{
		"scanner": map[string]interface{}{"use": true},
		"codes": map[string]interface{}{
			"t1": map[string]interface{}{"generate": true, "limit": 5},
		},
	})
	require.NoError(t, err)

	got := Normalize(datatypes.JSON(raw), nil)

	assert.True(t, got.Scanner.Use)
	assert.Equal(t, models.CodePermission{Generate: true, Limit: 5}, got.Codes["t1"])
}

func TestNormalizeIdempotent(t *testing.T) {
	templates := []models.CodeTemplate{
		{Base: models.Base{ID: "t1"}, Name: "VIP"},
	}
	raw := map[string]interface{}{
		"analytics": map[string]interface{}{"view": true},
		"events":    map[string]interface{}{"edit": true},
		"codes": map[string]interface{}{
			"VIP": map[string]interface{}{"generate": true, "limit": 3},
		},
	}

	first := Normalize(raw, templates)
	second := Normalize(first, templates)

	assert.Equal(t, first, second)
}

func TestNormalizeTypedRecordRoundTrip(t *testing.T) {
	rec := models.FounderPermissionRecord()
	got := Normalize(rec, nil)
	assert.Equal(t, rec, got)
}
