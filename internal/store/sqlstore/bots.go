package sqlstore

import (
	"github.com/pliu/courier/internal/models"
)

const botColumns = `b.id, b.owner_id, b.user_id, u.username, b.token, b.created_at`

func (s *SQLStore) CreateBot(ownerID, userID int, token string) (int64, error) {
	var id int64
	query := s.rebind("INSERT INTO bots (owner_id, user_id, token, created_at) VALUES (?, ?, ?, ?) RETURNING id")
	err := s.db.QueryRow(query, ownerID, userID, token, s.now()).Scan(&id)
	if err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

func (s *SQLStore) scanBot(query string, args ...any) (*models.Bot, error) {
	var b models.Bot
	err := s.db.QueryRow(query, args...).Scan(
		&b.ID, &b.OwnerID, &b.UserID, &b.Username, &b.Token, &b.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

func (s *SQLStore) GetBotByID(id int) (*models.Bot, error) {
	return s.scanBot(s.rebind(
		"SELECT "+botColumns+" FROM bots b JOIN users u ON b.user_id = u.id WHERE b.id = ?"), id)
}

func (s *SQLStore) GetBotByUserID(userID int) (*models.Bot, error) {
	return s.scanBot(s.rebind(
		"SELECT "+botColumns+" FROM bots b JOIN users u ON b.user_id = u.id WHERE b.user_id = ?"), userID)
}

func (s *SQLStore) GetBotByUsername(username string) (*models.Bot, error) {
	return s.scanBot(s.rebind(
		"SELECT "+botColumns+" FROM bots b JOIN users u ON b.user_id = u.id WHERE LOWER(u.username) = LOWER(?)"), username)
}

func (s *SQLStore) GetBotsByOwner(ownerID int) ([]models.Bot, error) {
	query := s.rebind(
		"SELECT " + botColumns + " FROM bots b JOIN users u ON b.user_id = u.id WHERE b.owner_id = ? ORDER BY b.id ASC")
	return s.queryBots(query, ownerID)
}

func (s *SQLStore) queryBots(query string, args ...any) ([]models.Bot, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bots []models.Bot
	for rows.Next() {
		var b models.Bot
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.UserID, &b.Username, &b.Token, &b.CreatedAt); err != nil {
			return nil, err
		}
		bots = append(bots, b)
	}
	return bots, rows.Err()
}

func (s *SQLStore) AddScript(botID int, trigger, response string) (int64, error) {
	var id int64
	query := s.rebind(`INSERT INTO bot_scripts (bot_id, "trigger", response, created_at) VALUES (?, ?, ?, ?) RETURNING id`)
	err := s.db.QueryRow(query, botID, trigger, response, s.now()).Scan(&id)
	if err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

func (s *SQLStore) GetScript(id int) (*models.BotScript, error) {
	var sc models.BotScript
	query := s.rebind(`SELECT id, bot_id, "trigger", response, created_at FROM bot_scripts WHERE id = ?`)
	err := s.db.QueryRow(query, id).Scan(&sc.ID, &sc.BotID, &sc.Trigger, &sc.Response, &sc.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &sc, nil
}

// GetScripts returns a bot's scripts in creation order, which is the order
// the trigger engine evaluates them in.
func (s *SQLStore) GetScripts(botID int) ([]models.BotScript, error) {
	query := s.rebind(`SELECT id, bot_id, "trigger", response, created_at FROM bot_scripts WHERE bot_id = ? ORDER BY id ASC`)
	rows, err := s.db.Query(query, botID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scripts []models.BotScript
	for rows.Next() {
		var sc models.BotScript
		if err := rows.Scan(&sc.ID, &sc.BotID, &sc.Trigger, &sc.Response, &sc.CreatedAt); err != nil {
			return nil, err
		}
		scripts = append(scripts, sc)
	}
	return scripts, rows.Err()
}

func (s *SQLStore) DeleteScript(id int) error {
	query := s.rebind("DELETE FROM bot_scripts WHERE id = ?")
	_, err := s.db.Exec(query, id)
	return err
}

func (s *SQLStore) AttachBot(conversationID, botID int) error {
	query := s.rebind(`
		INSERT INTO conversation_bots (conversation_id, bot_id) VALUES (?, ?)
		ON CONFLICT (conversation_id, bot_id) DO NOTHING
	`)
	_, err := s.db.Exec(query, conversationID, botID)
	return mapErr(err)
}

func (s *SQLStore) GetConversationBots(conversationID int) ([]models.Bot, error) {
	query := s.rebind(`
		SELECT ` + botColumns + `
		FROM bots b
		JOIN users u ON b.user_id = u.id
		JOIN conversation_bots cb ON b.id = cb.bot_id
		WHERE cb.conversation_id = ?
		ORDER BY b.id ASC
	`)
	return s.queryBots(query, conversationID)
}
