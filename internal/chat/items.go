package chat

import (
	"fmt"

	"github.com/pliu/courier/internal/models"
)

// CreateItem makes a new group or channel. The creator's membership record
// is written in the same transaction with every permission flag set.
func (s *Service) CreateItem(actorID int, kind models.ConversationKind, name string) (*models.Conversation, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid item kind %q: %w", kind, ErrBadRequest)
	}
	if name == "" {
		return nil, fmt.Errorf("item name is required: %w", ErrValidation)
	}

	id, err := s.store.CreateConversation(kind, name, actorID)
	if err != nil {
		return nil, wrapStoreErr(err, "create "+string(kind))
	}

	s.logger.Debugf("Created %s %q (id: %d) for user %d", kind, name, id, actorID)
	return s.conversation(int(id), kind)
}

// AddMember adds the named user to the item. Requires can_add_users.
// Re-adding an existing member is a no-op.
func (s *Service) AddMember(actorID, itemID int, kind models.ConversationKind, username string) error {
	conv, err := s.conversation(itemID, kind)
	if err != nil {
		return err
	}

	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		return wrapStoreErr(err, "user "+username)
	}

	ok, err := s.authorize(conv.ID, actorID, models.PermAddUsers)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("adding members to %s %d: %w", kind, itemID, ErrForbidden)
	}

	if _, err := s.store.EnsureMember(conv.ID, user.ID); err != nil {
		return wrapStoreErr(err, "member")
	}

	s.logger.Debugf("Added user %d to %s %d", user.ID, kind, conv.ID)
	return nil
}

// ManageItem renames the item. Requires can_manage_item.
func (s *Service) ManageItem(actorID, itemID int, kind models.ConversationKind, newName string) (*models.Conversation, error) {
	conv, err := s.conversation(itemID, kind)
	if err != nil {
		return nil, err
	}

	ok, err := s.authorize(conv.ID, actorID, models.PermManageItem)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("managing %s %d: %w", kind, itemID, ErrForbidden)
	}

	if newName == "" {
		return nil, fmt.Errorf("no action specified: %w", ErrBadRequest)
	}

	if err := s.store.RenameConversation(conv.ID, newName); err != nil {
		return nil, err
	}
	conv.Name = newName
	return conv, nil
}

// ManageMemberRole patches the target user's permission bundle. Requires
// can_promote_members. A missing membership record is created with all-false
// defaults before the patch lands, so promoting a non-member also adds them.
func (s *Service) ManageMemberRole(actorID, itemID int, kind models.ConversationKind, targetUserID int, patch models.PermissionPatch) error {
	conv, err := s.conversation(itemID, kind)
	if err != nil {
		return err
	}

	if _, err := s.store.GetUserByID(targetUserID); err != nil {
		return wrapStoreErr(err, "user")
	}

	ok, err := s.authorize(conv.ID, actorID, models.PermPromoteMembers)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("managing roles in %s %d: %w", kind, itemID, ErrForbidden)
	}

	// can_send_messages only exists on the channel variant.
	if kind == models.KindGroup && patch.CanSendMessages != nil {
		return fmt.Errorf("can_send_messages is not a group permission: %w", ErrBadRequest)
	}

	member, err := s.store.EnsureMember(conv.ID, targetUserID)
	if err != nil {
		return wrapStoreErr(err, "member")
	}

	patch.Apply(member)
	if err := s.store.UpdateMember(member); err != nil {
		return err
	}

	s.logger.Debugf("Updated role of user %d in %s %d", targetUserID, kind, conv.ID)
	return nil
}

// ListMembers returns the item's members, the actor excluded. Any member
// may list; non-members may not.
func (s *Service) ListMembers(actorID, itemID int, kind models.ConversationKind) ([]models.User, error) {
	conv, err := s.conversation(itemID, kind)
	if err != nil {
		return nil, err
	}

	isMember, err := s.store.IsMember(conv.ID, actorID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, fmt.Errorf("listing members of %s %d: %w", kind, itemID, ErrForbidden)
	}

	members, err := s.store.GetMembers(conv.ID)
	if err != nil {
		return nil, err
	}

	others := members[:0]
	for _, m := range members {
		if m.ID != actorID {
			others = append(others, m)
		}
	}
	return others, nil
}

// AttachBot attaches an existing bot to a group. Requires can_manage_item.
// Channels never carry bots: channel delivery does not trigger them.
func (s *Service) AttachBot(actorID, itemID int, kind models.ConversationKind, botUsername string) error {
	if kind != models.KindGroup {
		return fmt.Errorf("bots attach to groups only: %w", ErrBadRequest)
	}

	conv, err := s.conversation(itemID, kind)
	if err != nil {
		return err
	}

	ok, err := s.authorize(conv.ID, actorID, models.PermManageItem)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("attaching bots to group %d: %w", itemID, ErrForbidden)
	}

	bot, err := s.store.GetBotByUsername(botUsername)
	if err != nil {
		return wrapStoreErr(err, "bot "+botUsername)
	}

	if err := s.store.AttachBot(conv.ID, bot.ID); err != nil {
		return wrapStoreErr(err, "attach bot")
	}

	s.logger.Debugf("Attached bot %d to group %d", bot.ID, conv.ID)
	return nil
}
