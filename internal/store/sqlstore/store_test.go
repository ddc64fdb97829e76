package sqlstore

import (
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/pliu/courier/internal/models"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := New("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.db.Close() })
	return s
}

func createTestUser(t *testing.T, s *SQLStore, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "hash"}
	require.NoError(t, s.CreateUser(user))
	return user
}

func TestClockAssignsMonotonicTimestamps(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "alice")
	other := createTestUser(t, s, "bob")

	// Deterministic clock: each write is one second later.
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	first := &models.Message{SenderID: user.ID, RecipientUserID: other.ID, Text: "one"}
	second := &models.Message{SenderID: user.ID, RecipientUserID: other.ID, Text: "two"}
	require.NoError(t, s.SaveMessage(first))
	require.NoError(t, s.SaveMessage(second))

	require.True(t, second.Timestamp.After(first.Timestamp))
}
