package chat

import (
	"fmt"
	"io"
	"path"

	"github.com/pliu/courier/internal/models"
)

// FileUpload is an attachment riding along with a message.
type FileUpload struct {
	Name string
	Data io.Reader
}

// Send validates the target, persists the message, and hands text messages
// addressed to a user or a group to the notifier (the bot trigger engine).
// Group targets require membership; channel targets require an explicit
// can_send_messages grant; user targets are open to everyone.
func (s *Service) Send(senderID int, target models.Target, text string, file *FileUpload) (*models.Message, error) {
	if text == "" && file == nil {
		return nil, fmt.Errorf("message must have text or a file: %w", ErrBadRequest)
	}

	sender, err := s.store.GetUserByID(senderID)
	if err != nil {
		return nil, wrapStoreErr(err, "sender")
	}

	msg := &models.Message{
		SenderID:       sender.ID,
		SenderUsername: sender.Username,
		Text:           text,
	}

	switch target.Type {
	case models.TargetUser:
		recipient, err := s.store.GetUserByID(target.ID)
		if err != nil {
			return nil, wrapStoreErr(err, "recipient")
		}
		msg.RecipientUserID = recipient.ID

	case models.TargetGroup:
		conv, err := s.conversation(target.ID, models.KindGroup)
		if err != nil {
			return nil, err
		}
		isMember, err := s.store.IsMember(conv.ID, senderID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, fmt.Errorf("sending to group %d: %w", target.ID, ErrForbidden)
		}
		msg.RecipientConversationID = conv.ID

	case models.TargetChannel:
		conv, err := s.conversation(target.ID, models.KindChannel)
		if err != nil {
			return nil, err
		}
		ok, err := s.authorize(conv.ID, senderID, models.PermSendMessages)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("sending to channel %d: %w", target.ID, ErrForbidden)
		}
		msg.RecipientConversationID = conv.ID

	default:
		return nil, fmt.Errorf("invalid recipient type %q: %w", target.Type, ErrBadRequest)
	}

	if file != nil {
		locator, err := s.blobs.Save(file.Data, uploadDir(target, senderID), file.Name)
		if err != nil {
			return nil, err
		}
		msg.FilePath = locator
	}

	if err := s.store.SaveMessage(msg); err != nil {
		return nil, err
	}
	s.logger.Debugf("Saved message %d from user %d to %s %d", msg.ID, senderID, target.Type, target.ID)

	// Channel delivery never triggers bots. Replies synthesized by the
	// engine are plain store writes and do not re-enter here.
	if msg.Text != "" && target.Type != models.TargetChannel && s.notifier != nil {
		s.notifier.OnMessageDelivered(msg)
	}

	s.resolveFileURL(msg)
	return msg, nil
}

// Fetch returns the message history for the target. For a user target this
// is the symmetric conversation between the actor and that user; group and
// channel targets require membership. Soft-deleted messages stay in the
// result, flagged, so clients can render tombstones.
func (s *Service) Fetch(actorID int, target models.Target) ([]models.Message, error) {
	var messages []models.Message

	switch target.Type {
	case models.TargetUser:
		other, err := s.store.GetUserByID(target.ID)
		if err != nil {
			return nil, wrapStoreErr(err, "user")
		}
		messages, err = s.store.GetDirectMessages(actorID, other.ID)
		if err != nil {
			return nil, err
		}

	case models.TargetGroup, models.TargetChannel:
		kind := models.KindGroup
		if target.Type == models.TargetChannel {
			kind = models.KindChannel
		}
		conv, err := s.conversation(target.ID, kind)
		if err != nil {
			return nil, err
		}
		isMember, err := s.store.IsMember(conv.ID, actorID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, fmt.Errorf("fetching %s %d: %w", kind, target.ID, ErrForbidden)
		}
		messages, err = s.store.GetConversationMessages(conv.ID)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("invalid recipient type %q: %w", target.Type, ErrBadRequest)
	}

	for i := range messages {
		s.resolveFileURL(&messages[i])
	}
	return messages, nil
}

// SoftDelete marks the message deleted. The sender may always delete their
// own message; otherwise the actor needs can_delete_messages on the
// message's group or channel. Direct messages are sender-delete only.
func (s *Service) SoftDelete(actorID, messageID int) error {
	msg, err := s.store.GetMessage(messageID)
	if err != nil {
		return wrapStoreErr(err, "message")
	}

	canDelete := msg.SenderID == actorID
	if !canDelete && msg.RecipientConversationID != 0 {
		canDelete, err = s.authorize(msg.RecipientConversationID, actorID, models.PermDeleteMessages)
		if err != nil {
			return err
		}
	}
	if !canDelete {
		return fmt.Errorf("deleting message %d: %w", messageID, ErrForbidden)
	}

	if err := s.store.MarkMessageDeleted(msg.ID); err != nil {
		return err
	}
	s.logger.Debugf("Soft-deleted message %d by user %d", msg.ID, actorID)
	return nil
}

func (s *Service) resolveFileURL(msg *models.Message) {
	if msg.FilePath != "" && s.blobs != nil {
		msg.FileURL = s.blobs.Resolve(msg.FilePath)
	}
}

// uploadDir groups stored files by conversation: group and channel files
// under their item id, direct-message files under the sorted user-id pair.
func uploadDir(target models.Target, senderID int) string {
	switch target.Type {
	case models.TargetGroup:
		return path.Join("group_files", fmt.Sprint(target.ID))
	case models.TargetChannel:
		return path.Join("channel_files", fmt.Sprint(target.ID))
	case models.TargetUser:
		lo, hi := senderID, target.ID
		if lo > hi {
			lo, hi = hi, lo
		}
		return path.Join("dm_files", fmt.Sprintf("%d_%d", lo, hi))
	}
	return "misc_files"
}
