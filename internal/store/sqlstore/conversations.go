package sqlstore

import (
	"github.com/pliu/courier/internal/models"
)

// CreateConversation inserts the conversation and its creator's membership
// record in one transaction. The creator gets every permission flag.
func (s *SQLStore) CreateConversation(kind models.ConversationKind, name string, creatorID int) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int64
	query := s.rebind("INSERT INTO conversations (kind, name, creator_id, created_at) VALUES (?, ?, ?, ?) RETURNING id")
	if err := tx.QueryRow(query, kind, name, creatorID, s.now()).Scan(&id); err != nil {
		return 0, mapErr(err)
	}

	query = s.rebind(`
		INSERT INTO members
			(conversation_id, user_id, can_add_users, can_delete_messages,
			 can_manage_item, can_promote_members, can_send_messages, is_admin)
		VALUES (?, ?, TRUE, TRUE, TRUE, TRUE, TRUE, TRUE)
	`)
	if _, err := tx.Exec(query, id, creatorID); err != nil {
		return 0, mapErr(err)
	}

	return id, tx.Commit()
}

// GetConversation looks up by id and kind, so a group id addressed as a
// channel (or vice versa) reads as not found.
func (s *SQLStore) GetConversation(id int, kind models.ConversationKind) (*models.Conversation, error) {
	var c models.Conversation
	query := s.rebind("SELECT id, kind, name, creator_id, created_at FROM conversations WHERE id = ? AND kind = ?")
	err := s.db.QueryRow(query, id, kind).Scan(&c.ID, &c.Kind, &c.Name, &c.CreatorID, &c.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (s *SQLStore) RenameConversation(id int, name string) error {
	query := s.rebind("UPDATE conversations SET name = ? WHERE id = ?")
	_, err := s.db.Exec(query, name, id)
	return err
}

func (s *SQLStore) GetMember(conversationID, userID int) (*models.Member, error) {
	var m models.Member
	query := s.rebind(`
		SELECT conversation_id, user_id, can_add_users, can_delete_messages,
		       can_manage_item, can_promote_members, can_send_messages, is_admin
		FROM members
		WHERE conversation_id = ? AND user_id = ?
	`)
	err := s.db.QueryRow(query, conversationID, userID).Scan(
		&m.ConversationID, &m.UserID, &m.CanAddUsers, &m.CanDeleteMessages,
		&m.CanManageItem, &m.CanPromoteMembers, &m.CanSendMessages, &m.IsAdmin)
	if err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

// EnsureMember creates an all-false membership record if none exists and
// returns the record. Two callers racing on the same (conversation, user)
// pair both land on the single row: the conditional insert is a no-op for
// the loser.
func (s *SQLStore) EnsureMember(conversationID, userID int) (*models.Member, error) {
	query := s.rebind(`
		INSERT INTO members (conversation_id, user_id) VALUES (?, ?)
		ON CONFLICT (conversation_id, user_id) DO NOTHING
	`)
	if _, err := s.db.Exec(query, conversationID, userID); err != nil {
		return nil, mapErr(err)
	}
	return s.GetMember(conversationID, userID)
}

func (s *SQLStore) UpdateMember(m *models.Member) error {
	query := s.rebind(`
		UPDATE members
		SET can_add_users = ?, can_delete_messages = ?, can_manage_item = ?,
		    can_promote_members = ?, can_send_messages = ?, is_admin = ?
		WHERE conversation_id = ? AND user_id = ?
	`)
	_, err := s.db.Exec(query,
		m.CanAddUsers, m.CanDeleteMessages, m.CanManageItem,
		m.CanPromoteMembers, m.CanSendMessages, m.IsAdmin,
		m.ConversationID, m.UserID)
	return err
}

func (s *SQLStore) IsMember(conversationID, userID int) (bool, error) {
	var exists bool
	query := s.rebind("SELECT EXISTS(SELECT 1 FROM members WHERE conversation_id = ? AND user_id = ?)")
	err := s.db.QueryRow(query, conversationID, userID).Scan(&exists)
	return exists, err
}

func (s *SQLStore) GetMembers(conversationID int) ([]models.User, error) {
	query := s.rebind(`
		SELECT u.id, u.username
		FROM users u
		JOIN members m ON u.id = m.user_id
		WHERE m.conversation_id = ?
		ORDER BY u.username ASC
	`)
	rows, err := s.db.Query(query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
