package permissions

import (
	"context"
	"errors"
	"testing"

	"covent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func brandWithMembers(id, ownerID string, members ...models.BrandMember) *models.Brand {
	return &models.Brand{
		Base:    models.Base{ID: id},
		OwnerID: ownerID,
		Members: members,
	}
}

func TestFindUserRoleOwnerGetsFounder(t *testing.T) {
	founder := &models.Role{Base: models.Base{ID: "r-founder"}, BrandID: "b1", Name: "Founder", IsFounder: true}
	dir := newFakeDirectory().
		addBrand(brandWithMembers("b1", "u-owner")).
		addRole(founder)

	got, err := NewRoleLookup(dir).FindUserRole(context.Background(), "u-owner", "b1")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "r-founder", got.ID)
}

func TestFindUserRoleOwnerWithoutFounderRole(t *testing.T) {
	dir := newFakeDirectory().addBrand(brandWithMembers("b1", "u-owner"))

	got, err := NewRoleLookup(dir).FindUserRole(context.Background(), "u-owner", "b1")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindUserRoleMemberAssignedRole(t *testing.T) {
	role := &models.Role{Base: models.Base{ID: "r1"}, BrandID: "b1", Name: "Promoter"}
	dir := newFakeDirectory().
		addBrand(brandWithMembers("b1", "u-owner",
			models.BrandMember{UserID: "u-member", RoleID: "r1"},
		)).
		addRole(role)

	got, err := NewRoleLookup(dir).FindUserRole(context.Background(), "u-member", "b1")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "r1", got.ID)
}

func TestFindUserRoleMemberPreloadedRoleSkipsLookup(t *testing.T) {
	preloaded := &models.Role{Base: models.Base{ID: "r1"}, BrandID: "b1", Name: "Promoter"}
	dir := newFakeDirectory().
		addBrand(brandWithMembers("b1", "u-owner",
			models.BrandMember{UserID: "u-member", RoleID: "r1", Role: preloaded},
		))

	got, err := NewRoleLookup(dir).FindUserRole(context.Background(), "u-member", "b1")

	require.NoError(t, err)
	assert.Same(t, preloaded, got)
}

func TestFindUserRoleDanglingReferences(t *testing.T) {
	foreignRole := &models.Role{Base: models.Base{ID: "r-foreign"}, BrandID: "other-brand"}
	dir := newFakeDirectory().
		addBrand(brandWithMembers("b1", "u-owner",
			models.BrandMember{UserID: "u-dangling", RoleID: "r-gone"},
			models.BrandMember{UserID: "u-foreign", RoleID: "r-foreign"},
			models.BrandMember{UserID: "u-roleless", RoleID: ""},
		)).
		addRole(foreignRole)

	lookup := NewRoleLookup(dir)
	for _, userID := range []string{"u-dangling", "u-foreign", "u-roleless"} {
		got, err := lookup.FindUserRole(context.Background(), userID, "b1")
		require.NoError(t, err, userID)
		assert.Nil(t, got, userID)
	}
}

func TestFindUserRoleNonMember(t *testing.T) {
	dir := newFakeDirectory().addBrand(brandWithMembers("b1", "u-owner"))

	got, err := NewRoleLookup(dir).FindUserRole(context.Background(), "u-stranger", "b1")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindUserRoleMissingBrand(t *testing.T) {
	got, err := NewRoleLookup(newFakeDirectory()).FindUserRole(context.Background(), "u1", "b-missing")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindUserRoleInfrastructureError(t *testing.T) {
	dir := newFakeDirectory()
	dir.err = errors.New("connection refused")

	got, err := NewRoleLookup(dir).FindUserRole(context.Background(), "u1", "b1")

	assert.Error(t, err)
	assert.Nil(t, got)
}
