package permissions

import (
	"encoding/json"
	"testing"

	"covent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestCoerceMapShapes(t *testing.T) {
	want := map[string]interface{}{"analytics": map[string]interface{}{"view": true}}
	raw, err := json.Marshal(want)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input interface{}
	}{
		{"plain map", map[string]interface{}{"analytics": map[string]interface{}{"view": true}}},
		{"jsonb column", datatypes.JSON(raw)},
		{"json map column", datatypes.JSONMap{"analytics": map[string]interface{}{"view": true}}},
		{"raw message", json.RawMessage(raw)},
		{"byte slice", raw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Coerce(tt.input, true)
			assert.Equal(t, want, got)
		})
	}
}

func TestCoerceNonMapInputs(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
	}{
		{"nil", nil},
		{"string", "analytics"},
		{"number", 42},
		{"slice", []interface{}{"a", "b"}},
		{"malformed json", []byte(`{"analytics":`)},
		{"int-keyed map", map[int]string{1: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Coerce(tt.input, true)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestCoerceStruct(t *testing.T) {
	rec := models.DefaultOwnPermissionRecord()
	rec.Tables.Access = true

	got := Coerce(rec, true)

	tables, ok := got["tables"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, tables["access"])
	assert.Equal(t, false, tables["manage"])
	assert.Contains(t, got, "events")
	assert.Contains(t, got, "team")
}

func TestCoerceStructPointer(t *testing.T) {
	rec := models.DefaultPermissionRecord()
	got := Coerce(&rec, false)
	assert.Contains(t, got, "analytics")
	assert.NotContains(t, got, "events")
}

func TestCoerceDeepRecursesNestedValues(t *testing.T) {
	inner, err := json.Marshal(map[string]interface{}{"generate": true})
	require.NoError(t, err)

	got := Coerce(map[string]interface{}{
		"codes": map[string]interface{}{
			"tmpl-1": json.RawMessage(inner),
		},
		"list": []interface{}{
			map[string]interface{}{"nested": true},
		},
	}, true)

	codes, ok := got["codes"].(map[string]interface{})
	require.True(t, ok)
	entry, ok := codes["tmpl-1"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, entry["generate"])

	list, ok := got["list"].([]interface{})
	require.True(t, ok)
	first, ok := list[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, first["nested"])
}

func TestCoerceShallowLeavesNestedValues(t *testing.T) {
	got := Coerce(map[string]interface{}{
		"codes": json.RawMessage(`{"tmpl-1":{}}`),
	}, false)

	_, isRaw := got["codes"].(json.RawMessage)
	assert.True(t, isRaw)
}

func TestCoerceDoesNotMutateInput(t *testing.T) {
	input := map[string]interface{}{
		"codes": json.RawMessage(`{"tmpl-1":{"generate":true}}`),
	}
	Coerce(input, true)

	_, stillRaw := input["codes"].(json.RawMessage)
	assert.True(t, stillRaw)
}
