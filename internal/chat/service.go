package chat

import (
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/pliu/courier/internal/models"
	"github.com/pliu/courier/internal/store"
)

// Blobs is the file store the service writes attachments through. Save
// returns a locator; Resolve turns a locator into a retrievable URL.
type Blobs interface {
	Save(r io.Reader, dir, filename string) (string, error)
	Resolve(locator string) string
}

// Notifier is told about every delivered text message addressed to a user
// or a group. The bot trigger engine implements it.
type Notifier interface {
	OnMessageDelivered(msg *models.Message)
}

type Service struct {
	logger   *zap.SugaredLogger
	store    store.Store
	blobs    Blobs
	notifier Notifier
}

func NewService(logger *zap.SugaredLogger, st store.Store, blobs Blobs, notifier Notifier) *Service {
	return &Service{
		logger:   logger,
		store:    st,
		blobs:    blobs,
		notifier: notifier,
	}
}

// authorize is the access gate: it reports whether the actor's membership
// record in the conversation carries the required permission. An absent
// record fails closed, not with an error.
func (s *Service) authorize(conversationID, actorID int, perm models.Permission) (bool, error) {
	member, err := s.store.GetMember(conversationID, actorID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return member.Has(perm), nil
}

// conversation resolves an item id under a target kind; a kind mismatch
// reads as not found, same as an unknown id.
func (s *Service) conversation(id int, kind models.ConversationKind) (*models.Conversation, error) {
	conv, err := s.store.GetConversation(id, kind)
	if err != nil {
		return nil, wrapStoreErr(err, string(kind))
	}
	return conv, nil
}
