package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestCoHostGrantsMalformedJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  datatypes.JSON
	}{
		{"empty", nil},
		{"truncated", datatypes.JSON(`[{"brandId":`)},
		{"wrong shape", datatypes.JSON(`{"brandId":"b1"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &Event{CoHostRolePermissions: tt.raw}
			assert.Nil(t, event.CoHostGrants())
			assert.Nil(t, event.GrantForBrand("b1"))
		})
	}
}

func TestSetCoHostGrantReplacesWholesale(t *testing.T) {
	event := &Event{}
	require.NoError(t, event.SetCoHostGrant("b1", []RoleGrant{
		{RoleID: "r1", Permissions: json.RawMessage(`{"tables":{"access":true}}`)},
		{RoleID: "r2", Permissions: json.RawMessage(`{}`)},
	}))
	require.NoError(t, event.SetCoHostGrant("b2", []RoleGrant{
		{RoleID: "r9", Permissions: json.RawMessage(`{}`)},
	}))

	// Replacing b1 drops its old r2 entry and leaves b2 alone
	require.NoError(t, event.SetCoHostGrant("b1", []RoleGrant{
		{RoleID: "r1", Permissions: json.RawMessage(`{"scanner":{"use":true}}`)},
	}))

	grants := event.CoHostGrants()
	require.Len(t, grants, 2)

	b1 := event.GrantForBrand("b1")
	require.NotNil(t, b1)
	require.Len(t, b1.RolePermissions, 1)
	assert.Equal(t, "r1", b1.RolePermissions[0].RoleID)

	b2 := event.GrantForBrand("b2")
	require.NotNil(t, b2)
	assert.Equal(t, "r9", b2.RolePermissions[0].RoleID)

	assert.Nil(t, event.GrantForBrand("b-unknown"))
}

func TestPermissionRecordCloneIsIndependent(t *testing.T) {
	rec := FounderPermissionRecord()
	rec.Codes["t1"] = CodePermission{Generate: true}

	cloned := rec.Clone()
	cloned.Codes["t1"] = CodePermission{}
	cloned.Events.Create = false

	assert.Equal(t, CodePermission{Generate: true}, rec.Codes["t1"])
	assert.True(t, rec.Events.Create)
}

func TestPermissionRecordCloneNilCodes(t *testing.T) {
	rec := PermissionRecord{}
	cloned := rec.Clone()
	assert.NotNil(t, cloned.Codes)
}

func TestDefaultRecordShapes(t *testing.T) {
	def := DefaultPermissionRecord()
	assert.NotNil(t, def.Codes)
	assert.Nil(t, def.Events)
	assert.Nil(t, def.Team)

	own := DefaultOwnPermissionRecord()
	require.NotNil(t, own.Events)
	require.NotNil(t, own.Team)
	assert.False(t, own.Events.Create)
	assert.False(t, own.Team.Manage)
}
