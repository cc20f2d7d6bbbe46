package permissions

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"covent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func mustGrant(t *testing.T, event *models.Event, brandID string, grants ...models.RoleGrant) {
	t.Helper()
	require.NoError(t, event.SetCoHostGrant(brandID, grants))
}

func rawRecord(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestResolveOwnBrand(t *testing.T) {
	role := &models.Role{
		Base:    models.Base{ID: "r1"},
		BrandID: "b1",
		Name:    "Manager",
		Permissions: datatypes.JSON(rawRecord(t, map[string]interface{}{
			"analytics": map[string]interface{}{"view": true},
			"events":    map[string]interface{}{"create": true},
			"team":      map[string]interface{}{"view": true},
		})),
	}
	dir := newFakeDirectory().
		addBrand(brandWithMembers("b1", "u-owner",
			models.BrandMember{UserID: "u1", RoleID: "r1"},
		)).
		addRole(role)

	got, err := NewResolver(dir).Resolve(context.Background(), "u1", "b1", "", false)

	require.NoError(t, err)
	assert.True(t, got.Analytics.View)
	require.NotNil(t, got.Events)
	assert.True(t, got.Events.Create)
	require.NotNil(t, got.Team)
	assert.True(t, got.Team.View)
}

func TestResolveNoRoleDefaults(t *testing.T) {
	dir := newFakeDirectory().addBrand(brandWithMembers("b1", "u-owner"))

	got, err := NewResolver(dir).Resolve(context.Background(), "u-stranger", "b1", "", false)

	require.NoError(t, err)
	assert.Equal(t, models.DefaultPermissionRecord(), got)
}

func TestResolveCoHostWithoutEventDefaults(t *testing.T) {
	role := &models.Role{Base: models.Base{ID: "r1"}, BrandID: "b-co", Name: "Promoter"}
	dir := newFakeDirectory().
		addBrand(brandWithMembers("b-co", "u-owner",
			models.BrandMember{UserID: "u1", RoleID: "r1"},
		)).
		addRole(role)

	got, err := NewResolver(dir).Resolve(context.Background(), "u1", "b-co", "", true)

	require.NoError(t, err)
	assert.Equal(t, models.DefaultPermissionRecord(), got)
}

func TestResolveCoHostGrant(t *testing.T) {
	role := &models.Role{Base: models.Base{ID: "r-co"}, BrandID: "b-co", Name: "Promoter"}
	event := &models.Event{Base: models.Base{ID: "e1"}, BrandID: "b-host"}
	mustGrant(t, event, "b-co", models.RoleGrant{
		RoleID: "r-co",
		Permissions: rawRecord(t, map[string]interface{}{
			"tables": map[string]interface{}{"access": true},
			"codes": map[string]interface{}{
				"tmpl-x": map[string]interface{}{"unlimited": true},
			},
		}),
	})

	dir := newFakeDirectory().
		addBrand(brandWithMembers("b-co", "u-owner",
			models.BrandMember{UserID: "u1", RoleID: "r-co"},
		)).
		addRole(role).
		addEvent(event).
		addTemplate(models.CodeTemplate{Base: models.Base{ID: "tmpl-x"}, BrandID: "b-host", Name: "VIP"}).
		addTemplate(models.CodeTemplate{Base: models.Base{ID: "tmpl-y"}, BrandID: "b-host", Name: "Guest"})

	got, err := NewResolver(dir).Resolve(context.Background(), "u1", "b-co", "e1", true)

	require.NoError(t, err)
	assert.True(t, got.Tables.Access)
	assert.False(t, got.Tables.Manage)
	assert.Equal(t, models.CodePermission{Unlimited: true}, got.Codes["tmpl-x"])
	// tmpl-y postdates the grant and must be explicitly denied
	assert.Equal(t, models.CodePermission{}, got.Codes["tmpl-y"])
	// co-host records never carry the own-brand groups
	assert.Nil(t, got.Events)
	assert.Nil(t, got.Team)
}

func TestResolveCoHostUnconfiguredRoleDefaults(t *testing.T) {
	role := &models.Role{Base: models.Base{ID: "r-co"}, BrandID: "b-co"}
	event := &models.Event{Base: models.Base{ID: "e1"}, BrandID: "b-host"}
	mustGrant(t, event, "b-co", models.RoleGrant{
		RoleID:      "r-other",
		Permissions: rawRecord(t, map[string]interface{}{"tables": map[string]interface{}{"access": true}}),
	})

	dir := newFakeDirectory().
		addBrand(brandWithMembers("b-co", "u-owner",
			models.BrandMember{UserID: "u1", RoleID: "r-co"},
		)).
		addRole(role).
		addEvent(event)

	got, err := NewResolver(dir).Resolve(context.Background(), "u1", "b-co", "e1", true)

	require.NoError(t, err)
	assert.Equal(t, models.DefaultPermissionRecord(), got)
}

func TestResolveCoHostNoGrantForBrandDefaults(t *testing.T) {
	role := &models.Role{Base: models.Base{ID: "r-co"}, BrandID: "b-co"}
	event := &models.Event{Base: models.Base{ID: "e1"}, BrandID: "b-host"}
	mustGrant(t, event, "b-someone-else", models.RoleGrant{
		RoleID:      "r-x",
		Permissions: rawRecord(t, map[string]interface{}{"scanner": map[string]interface{}{"use": true}}),
	})

	dir := newFakeDirectory().
		addBrand(brandWithMembers("b-co", "u-owner",
			models.BrandMember{UserID: "u1", RoleID: "r-co"},
		)).
		addRole(role).
		addEvent(event)

	got, err := NewResolver(dir).Resolve(context.Background(), "u1", "b-co", "e1", true)

	require.NoError(t, err)
	assert.Equal(t, models.DefaultPermissionRecord(), got)
}

func TestResolveChildInheritsParentGrants(t *testing.T) {
	role := &models.Role{Base: models.Base{ID: "r-co"}, BrandID: "b-co"}
	parent := &models.Event{Base: models.Base{ID: "e-parent"}, BrandID: "b-host"}
	mustGrant(t, parent, "b-co", models.RoleGrant{
		RoleID:      "r-co",
		Permissions: rawRecord(t, map[string]interface{}{"scanner": map[string]interface{}{"use": true}}),
	})
	child := &models.Event{Base: models.Base{ID: "e-child"}, BrandID: "b-host", ParentEventID: "e-parent"}

	dir := newFakeDirectory().
		addBrand(brandWithMembers("b-co", "u-owner",
			models.BrandMember{UserID: "u1", RoleID: "r-co"},
		)).
		addRole(role).
		addEvent(parent).
		addEvent(child)

	got, err := NewResolver(dir).Resolve(context.Background(), "u1", "b-co", "e-child", true)

	require.NoError(t, err)
	assert.True(t, got.Scanner.Use)
}

func TestResolveChildOwnGrantsShadowParent(t *testing.T) {
	role := &models.Role{Base: models.Base{ID: "r-co"}, BrandID: "b-co"}
	parent := &models.Event{Base: models.Base{ID: "e-parent"}, BrandID: "b-host"}
	mustGrant(t, parent, "b-co", models.RoleGrant{
		RoleID:      "r-co",
		Permissions: rawRecord(t, map[string]interface{}{"scanner": map[string]interface{}{"use": true}}),
	})
	child := &models.Event{Base: models.Base{ID: "e-child"}, BrandID: "b-host", ParentEventID: "e-parent"}
	mustGrant(t, child, "b-co", models.RoleGrant{
		RoleID:      "r-co",
		Permissions: rawRecord(t, map[string]interface{}{"tables": map[string]interface{}{"access": true}}),
	})

	dir := newFakeDirectory().
		addBrand(brandWithMembers("b-co", "u-owner",
			models.BrandMember{UserID: "u1", RoleID: "r-co"},
		)).
		addRole(role).
		addEvent(parent).
		addEvent(child)

	got, err := NewResolver(dir).Resolve(context.Background(), "u1", "b-co", "e-child", true)

	require.NoError(t, err)
	// A non-empty child grant array is authoritative, never merged
	assert.True(t, got.Tables.Access)
	assert.False(t, got.Scanner.Use)
}

func TestResolveChildUsesParentTemplateScope(t *testing.T) {
	role := &models.Role{Base: models.Base{ID: "r-co"}, BrandID: "b-co"}
	child := &models.Event{Base: models.Base{ID: "e-child"}, BrandID: "b-host", ParentEventID: "e-parent"}
	mustGrant(t, child, "b-co", models.RoleGrant{
		RoleID:      "r-co",
		Permissions: rawRecord(t, map[string]interface{}{}),
	})

	dir := newFakeDirectory().
		addBrand(brandWithMembers("b-co", "u-owner",
			models.BrandMember{UserID: "u1", RoleID: "r-co"},
		)).
		addRole(role).
		addEvent(child).
		addTemplate(models.CodeTemplate{Base: models.Base{ID: "t-parent"}, BrandID: "b-host", EventID: "e-parent", Name: "VIP"}).
		addTemplate(models.CodeTemplate{Base: models.Base{ID: "t-other"}, BrandID: "b-host", EventID: "e-unrelated", Name: "Other"})

	got, err := NewResolver(dir).Resolve(context.Background(), "u1", "b-co", "e-child", true)

	require.NoError(t, err)
	assert.Contains(t, got.Codes, "t-parent")
	assert.NotContains(t, got.Codes, "t-other")
}

func TestResolveMissingEventDefaults(t *testing.T) {
	role := &models.Role{Base: models.Base{ID: "r-co"}, BrandID: "b-co"}
	dir := newFakeDirectory().
		addBrand(brandWithMembers("b-co", "u-owner",
			models.BrandMember{UserID: "u1", RoleID: "r-co"},
		)).
		addRole(role)

	got, err := NewResolver(dir).Resolve(context.Background(), "u1", "b-co", "e-missing", true)

	require.NoError(t, err)
	assert.Equal(t, models.DefaultPermissionRecord(), got)
}

func TestResolveInfrastructureErrorSurfaces(t *testing.T) {
	dir := newFakeDirectory()
	dir.err = errors.New("connection refused")

	got, err := NewResolver(dir).Resolve(context.Background(), "u1", "b1", "", false)

	assert.Error(t, err)
	assert.Equal(t, models.DefaultPermissionRecord(), got)
}

func TestResolveBatchOwnBrand(t *testing.T) {
	role := &models.Role{
		Base:    models.Base{ID: "r1"},
		BrandID: "b1",
		Permissions: datatypes.JSON(rawRecord(t, map[string]interface{}{
			"analytics": map[string]interface{}{"view": true},
			"codes": map[string]interface{}{
				"t1": map[string]interface{}{"generate": true},
			},
		})),
	}
	dir := newFakeDirectory().
		addBrand(brandWithMembers("b1", "u-owner",
			models.BrandMember{UserID: "u1", RoleID: "r1"},
		)).
		addRole(role)

	got, err := NewResolver(dir).ResolveBatch(context.Background(), "u1", "b1", []string{"e1", "e2", "e3"}, false)

	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, id := range []string{"e1", "e2", "e3"} {
		assert.True(t, got[id].Analytics.View, id)
	}

	// Entries are independent clones, not shared state
	got["e1"].Codes["t1"] = models.CodePermission{}
	assert.Equal(t, models.CodePermission{Generate: true}, got["e2"].Codes["t1"])
}

func TestResolveBatchCoHost(t *testing.T) {
	role := &models.Role{Base: models.Base{ID: "r-co"}, BrandID: "b-co"}
	granted := &models.Event{Base: models.Base{ID: "e-granted"}, BrandID: "b-host"}
	mustGrant(t, granted, "b-co", models.RoleGrant{
		RoleID:      "r-co",
		Permissions: rawRecord(t, map[string]interface{}{"tables": map[string]interface{}{"access": true}}),
	})
	ungranted := &models.Event{Base: models.Base{ID: "e-ungranted"}, BrandID: "b-host"}

	dir := newFakeDirectory().
		addBrand(brandWithMembers("b-co", "u-owner",
			models.BrandMember{UserID: "u1", RoleID: "r-co"},
		)).
		addRole(role).
		addEvent(granted).
		addEvent(ungranted)

	got, err := NewResolver(dir).ResolveBatch(context.Background(), "u1", "b-co",
		[]string{"e-granted", "e-ungranted", "e-missing"}, true)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got["e-granted"].Tables.Access)
	assert.Equal(t, models.DefaultPermissionRecord(), got["e-ungranted"])
	assert.Equal(t, models.DefaultPermissionRecord(), got["e-missing"])
}

func TestResolveBatchNoRole(t *testing.T) {
	dir := newFakeDirectory().addBrand(brandWithMembers("b1", "u-owner"))

	got, err := NewResolver(dir).ResolveBatch(context.Background(), "u-stranger", "b1", []string{"e1", "e2"}, true)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.DefaultPermissionRecord(), got["e1"])
	assert.Equal(t, models.DefaultPermissionRecord(), got["e2"])
}
