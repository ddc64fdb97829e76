package sqlstore

import (
	"database/sql"

	"github.com/pliu/courier/internal/models"
)

// SaveMessage persists the message, assigning its id and write-time
// timestamp. Exactly one of RecipientUserID / RecipientConversationID must
// be set; callers validate, the store just writes NULL for the unset side.
func (s *SQLStore) SaveMessage(msg *models.Message) error {
	msg.Timestamp = s.now()

	var id int64
	query := s.rebind(`
		INSERT INTO messages (sender_id, recipient_user_id, recipient_conversation_id, text, file_path, created_at, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, FALSE)
		RETURNING id
	`)
	err := s.db.QueryRow(query,
		msg.SenderID, nullableID(msg.RecipientUserID), nullableID(msg.RecipientConversationID),
		msg.Text, msg.FilePath, msg.Timestamp).Scan(&id)
	if err != nil {
		return mapErr(err)
	}
	msg.ID = int(id)
	return nil
}

func nullableID(id int) any {
	if id == 0 {
		return nil
	}
	return id
}

const messageColumns = `
	m.id, m.sender_id, u.username, m.recipient_user_id, m.recipient_conversation_id,
	m.text, m.file_path, m.created_at, m.is_deleted`

func (s *SQLStore) GetMessage(id int) (*models.Message, error) {
	query := s.rebind("SELECT " + messageColumns + " FROM messages m JOIN users u ON m.sender_id = u.id WHERE m.id = ?")
	row := s.db.QueryRow(query, id)

	var m models.Message
	if err := scanMessage(row.Scan, &m); err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

// GetConversationMessages returns the full history, soft-deleted messages
// included, ordered by timestamp with insertion order breaking ties.
func (s *SQLStore) GetConversationMessages(conversationID int) ([]models.Message, error) {
	query := s.rebind(`
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.recipient_conversation_id = ?
		ORDER BY m.created_at ASC, m.id ASC
	`)
	return s.queryMessages(query, conversationID)
}

// GetDirectMessages returns the symmetric conversation between two users:
// messages either of them sent directly to the other.
func (s *SQLStore) GetDirectMessages(userID, otherID int) ([]models.Message, error) {
	query := s.rebind(`
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE (m.sender_id = ? AND m.recipient_user_id = ?)
		   OR (m.sender_id = ? AND m.recipient_user_id = ?)
		ORDER BY m.created_at ASC, m.id ASC
	`)
	return s.queryMessages(query, userID, otherID, otherID, userID)
}

func (s *SQLStore) MarkMessageDeleted(id int) error {
	query := s.rebind("UPDATE messages SET is_deleted = TRUE WHERE id = ?")
	_, err := s.db.Exec(query, id)
	return err
}

func (s *SQLStore) queryMessages(query string, args ...any) ([]models.Message, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := scanMessage(rows.Scan, &m); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func scanMessage(scan func(...any) error, m *models.Message) error {
	var recipientUser, recipientConv sql.NullInt64
	var text, filePath sql.NullString
	err := scan(&m.ID, &m.SenderID, &m.SenderUsername, &recipientUser, &recipientConv,
		&text, &filePath, &m.Timestamp, &m.IsDeleted)
	if err != nil {
		return err
	}
	m.RecipientUserID = int(recipientUser.Int64)
	m.RecipientConversationID = int(recipientConv.Int64)
	m.Text = text.String
	m.FilePath = filePath.String
	return nil
}
