package sqlstore

import (
	"github.com/pliu/courier/internal/models"
)

func (s *SQLStore) CreateUser(user *models.User) error {
	var id int64
	query := s.rebind("INSERT INTO users (username, password) VALUES (?, ?) RETURNING id")
	err := s.db.QueryRow(query, user.Username, user.Password).Scan(&id)
	if err != nil {
		return mapErr(err)
	}
	user.ID = int(id)
	return nil
}

func (s *SQLStore) GetUserByID(id int) (*models.User, error) {
	var user models.User
	query := s.rebind("SELECT id, username, password FROM users WHERE id = ?")
	err := s.db.QueryRow(query, id).Scan(&user.ID, &user.Username, &user.Password)
	if err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

// GetUserByUsername matches case-insensitively.
func (s *SQLStore) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	query := s.rebind("SELECT id, username, password FROM users WHERE LOWER(username) = LOWER(?)")
	err := s.db.QueryRow(query, username).Scan(&user.ID, &user.Username, &user.Password)
	if err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (s *SQLStore) SearchUsers(queryStr string) ([]models.User, error) {
	query := s.rebind("SELECT id, username FROM users WHERE username LIKE ? LIMIT 10")
	rows, err := s.db.Query(query, "%"+queryStr+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// AddContact records a directed contact edge. Re-adding an existing contact
// is a no-op: the primary key on (owner_id, contact_user_id) absorbs the
// duplicate insert.
func (s *SQLStore) AddContact(ownerID, contactUserID int) error {
	query := s.rebind(`
		INSERT INTO contacts (owner_id, contact_user_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (owner_id, contact_user_id) DO NOTHING
	`)
	_, err := s.db.Exec(query, ownerID, contactUserID, s.now())
	return mapErr(err)
}

func (s *SQLStore) GetContacts(ownerID int) ([]models.User, error) {
	query := s.rebind(`
		SELECT u.id, u.username
		FROM users u
		JOIN contacts c ON u.id = c.contact_user_id
		WHERE c.owner_id = ?
		ORDER BY u.username ASC
	`)
	rows, err := s.db.Query(query, ownerID)
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
