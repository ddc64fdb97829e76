package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pliu/courier/internal/blob"
	"github.com/pliu/courier/internal/models"
	"github.com/pliu/courier/internal/store/sqlstore"
)

// recordingNotifier captures delivered messages in place of the bot engine.
type recordingNotifier struct {
	delivered []*models.Message
}

func (n *recordingNotifier) OnMessageDelivered(msg *models.Message) {
	n.delivered = append(n.delivered, msg)
}

type fixture struct {
	service  *Service
	store    *sqlstore.SQLStore
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlstore.New("sqlite3", ":memory:")
	require.NoError(t, err)

	blobs, err := blob.NewStore(t.TempDir(), "/media")
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	service := NewService(zap.NewNop().Sugar(), st, blobs, notifier)
	return &fixture{service: service, store: st, notifier: notifier}
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "hash"}
	require.NoError(t, f.store.CreateUser(user))
	return user
}

func boolPtr(b bool) *bool { return &b }
