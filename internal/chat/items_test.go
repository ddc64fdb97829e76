package chat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pliu/courier/internal/models"
)

func TestCreateItemValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	_, err := f.service.CreateItem(alice.ID, models.KindGroup, "")
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.service.CreateItem(alice.ID, "broadcast", "News")
	require.ErrorIs(t, err, ErrBadRequest)

	item, err := f.service.CreateItem(alice.ID, models.KindChannel, "News")
	require.NoError(t, err)
	require.Equal(t, models.KindChannel, item.Kind)
	require.Equal(t, alice.ID, item.CreatorID)
}

func TestCreateItemFounderHasAllPermissions(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	item, err := f.service.CreateItem(alice.ID, models.KindChannel, "News")
	require.NoError(t, err)

	member, err := f.store.GetMember(item.ID, alice.ID)
	require.NoError(t, err)
	for _, perm := range []models.Permission{
		models.PermAddUsers, models.PermDeleteMessages, models.PermManageItem,
		models.PermPromoteMembers, models.PermSendMessages,
	} {
		require.True(t, member.Has(perm))
	}
	require.True(t, member.IsAdmin)
}

func TestAddMemberRequiresPermission(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")

	item, err := f.service.CreateItem(alice.ID, models.KindGroup, "General")
	require.NoError(t, err)

	// Bob is not even a member yet: fails closed.
	err = f.service.AddMember(bob.ID, item.ID, models.KindGroup, "carol")
	require.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.service.AddMember(alice.ID, item.ID, models.KindGroup, "bob"))

	// Default all-false membership still cannot add.
	err = f.service.AddMember(bob.ID, item.ID, models.KindGroup, "carol")
	require.ErrorIs(t, err, ErrForbidden)

	err = f.service.AddMember(alice.ID, item.ID, models.KindGroup, "nosuchuser")
	require.ErrorIs(t, err, ErrNotFound)
	_ = carol
}

func TestAddMemberIdempotent(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.user(t, "bob")

	item, err := f.service.CreateItem(alice.ID, models.KindGroup, "General")
	require.NoError(t, err)

	// Case-insensitive username resolution, repeated adds, one record.
	require.NoError(t, f.service.AddMember(alice.ID, item.ID, models.KindGroup, "BOB"))
	require.NoError(t, f.service.AddMember(alice.ID, item.ID, models.KindGroup, "bob"))

	members, err := f.store.GetMembers(item.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
}

func TestManageItemRename(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	item, err := f.service.CreateItem(alice.ID, models.KindGroup, "G")
	require.NoError(t, err)
	require.NoError(t, f.service.AddMember(alice.ID, item.ID, models.KindGroup, "bob"))

	_, err = f.service.ManageItem(bob.ID, item.ID, models.KindGroup, "G2")
	require.ErrorIs(t, err, ErrForbidden)

	// Granting can_manage_item unlocks the rename.
	err = f.service.ManageMemberRole(alice.ID, item.ID, models.KindGroup, bob.ID,
		models.PermissionPatch{CanManageItem: boolPtr(true)})
	require.NoError(t, err)

	renamed, err := f.service.ManageItem(bob.ID, item.ID, models.KindGroup, "G2")
	require.NoError(t, err)
	require.Equal(t, "G2", renamed.Name)

	// Rename with nothing to change.
	_, err = f.service.ManageItem(alice.ID, item.ID, models.KindGroup, "")
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestManageMemberRolePartialPatch(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	item, err := f.service.CreateItem(alice.ID, models.KindChannel, "News")
	require.NoError(t, err)
	require.NoError(t, f.service.AddMember(alice.ID, item.ID, models.KindChannel, "bob"))

	err = f.service.ManageMemberRole(alice.ID, item.ID, models.KindChannel, bob.ID,
		models.PermissionPatch{
			CanAddUsers:     boolPtr(true),
			CanSendMessages: boolPtr(true),
		})
	require.NoError(t, err)

	// Patch only is_admin: every other flag keeps its prior value.
	err = f.service.ManageMemberRole(alice.ID, item.ID, models.KindChannel, bob.ID,
		models.PermissionPatch{IsAdmin: boolPtr(true)})
	require.NoError(t, err)

	member, err := f.store.GetMember(item.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, member.IsAdmin)
	require.True(t, member.CanAddUsers)
	require.True(t, member.CanSendMessages)
	require.False(t, member.CanManageItem)
	require.False(t, member.CanPromoteMembers)
}

func TestManageMemberRoleCreatesMissingRecord(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	item, err := f.service.CreateItem(alice.ID, models.KindGroup, "General")
	require.NoError(t, err)

	// Bob was never added; promoting him creates his record first.
	err = f.service.ManageMemberRole(alice.ID, item.ID, models.KindGroup, bob.ID,
		models.PermissionPatch{CanDeleteMessages: boolPtr(true)})
	require.NoError(t, err)

	member, err := f.store.GetMember(item.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, member.CanDeleteMessages)
	require.False(t, member.CanAddUsers)
}

func TestManageMemberRoleRejectsSendFlagOnGroups(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	item, err := f.service.CreateItem(alice.ID, models.KindGroup, "General")
	require.NoError(t, err)

	err = f.service.ManageMemberRole(alice.ID, item.ID, models.KindGroup, bob.ID,
		models.PermissionPatch{CanSendMessages: boolPtr(true)})
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestManageMemberRoleRequiresPromotePermission(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	item, err := f.service.CreateItem(alice.ID, models.KindGroup, "General")
	require.NoError(t, err)
	require.NoError(t, f.service.AddMember(alice.ID, item.ID, models.KindGroup, "bob"))

	err = f.service.ManageMemberRole(bob.ID, item.ID, models.KindGroup, alice.ID,
		models.PermissionPatch{IsAdmin: boolPtr(true)})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestListMembersExcludesActor(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")

	item, err := f.service.CreateItem(alice.ID, models.KindGroup, "General")
	require.NoError(t, err)
	require.NoError(t, f.service.AddMember(alice.ID, item.ID, models.KindGroup, "bob"))

	members, err := f.service.ListMembers(alice.ID, item.ID, models.KindGroup)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, bob.ID, members[0].ID)

	// Non-members cannot list.
	_, err = f.service.ListMembers(carol.ID, item.ID, models.KindGroup)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestKindMismatchedLookupIsNotFound(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	item, err := f.service.CreateItem(alice.ID, models.KindGroup, "General")
	require.NoError(t, err)

	_, err = f.service.ListMembers(alice.ID, item.ID, models.KindChannel)
	require.ErrorIs(t, err, ErrNotFound)
}
