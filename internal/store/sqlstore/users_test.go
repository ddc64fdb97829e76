package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pliu/courier/internal/models"
	"github.com/pliu/courier/internal/store"
)

func TestCreateUserDuplicate(t *testing.T) {
	s := newTestStore(t)

	createTestUser(t, s, "testuser")

	err := s.CreateUser(&models.User{Username: "testuser", Password: "hash"})
	require.ErrorIs(t, err, store.ErrDuplicate)
}

func TestGetUserByUsernameCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	created := createTestUser(t, s, "TestUser")

	user, err := s.GetUserByUsername("tEsTuSeR")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)
	require.Equal(t, "TestUser", user.Username)

	_, err = s.GetUserByUsername("nonexistent")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSearchUsers(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "alice")
	createTestUser(t, s, "bob")
	createTestUser(t, s, "alex")

	users, err := s.SearchUsers("al")
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestAddContactIdempotent(t *testing.T) {
	s := newTestStore(t)
	owner := createTestUser(t, s, "owner")
	friend := createTestUser(t, s, "friend")

	require.NoError(t, s.AddContact(owner.ID, friend.ID))
	require.NoError(t, s.AddContact(owner.ID, friend.ID))

	contacts, err := s.GetContacts(owner.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	require.Equal(t, "friend", contacts[0].Username)

	// Directed edge: the reverse direction was never added.
	reverse, err := s.GetContacts(friend.ID)
	require.NoError(t, err)
	require.Empty(t, reverse)
}
