package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/pliu/courier/internal/store"
)

type SQLStore struct {
	db         *sql.DB
	driverName string

	// now assigns message timestamps at write time; overridable in tests.
	now func() time.Time
}

func New(driverName, dataSourceName string) (*SQLStore, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLStore{db: db, driverName: driverName, now: time.Now}
	if err := s.createTables(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) createTables() error {
	// Simplified for brevity, ideally use migrations
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL COLLATE NOCASE,
		password TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contacts (
		owner_id INTEGER,
		contact_user_id INTEGER,
		created_at DATETIME,
		PRIMARY KEY (owner_id, contact_user_id),
		FOREIGN KEY (owner_id) REFERENCES users(id),
		FOREIGN KEY (contact_user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS bots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id INTEGER NOT NULL REFERENCES users(id),
		user_id INTEGER UNIQUE NOT NULL REFERENCES users(id),
		token TEXT UNIQUE NOT NULL,
		created_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS bot_scripts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		bot_id INTEGER NOT NULL REFERENCES bots(id),
		"trigger" TEXT NOT NULL,
		response TEXT NOT NULL,
		created_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS conversations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		creator_id INTEGER NOT NULL REFERENCES users(id),
		created_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS members (
		conversation_id INTEGER,
		user_id INTEGER,
		can_add_users BOOLEAN DEFAULT FALSE,
		can_delete_messages BOOLEAN DEFAULT FALSE,
		can_manage_item BOOLEAN DEFAULT FALSE,
		can_promote_members BOOLEAN DEFAULT FALSE,
		can_send_messages BOOLEAN DEFAULT FALSE,
		is_admin BOOLEAN DEFAULT FALSE,
		PRIMARY KEY (conversation_id, user_id),
		FOREIGN KEY (conversation_id) REFERENCES conversations(id),
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS conversation_bots (
		conversation_id INTEGER,
		bot_id INTEGER,
		PRIMARY KEY (conversation_id, bot_id),
		FOREIGN KEY (conversation_id) REFERENCES conversations(id),
		FOREIGN KEY (bot_id) REFERENCES bots(id)
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sender_id INTEGER NOT NULL REFERENCES users(id),
		recipient_user_id INTEGER,
		recipient_conversation_id INTEGER,
		text TEXT,
		file_path TEXT,
		created_at DATETIME,
		is_deleted BOOLEAN DEFAULT FALSE
	);
	`

	if s.driverName == "postgres" {
		// Adjust for Postgres syntax
		query = strings.ReplaceAll(query, "INTEGER PRIMARY KEY AUTOINCREMENT", "SERIAL PRIMARY KEY")
		query = strings.ReplaceAll(query, "DATETIME", "TIMESTAMP")
		query = strings.ReplaceAll(query, "COLLATE NOCASE", "")
	}

	_, err := s.db.Exec(query)
	return err
}

// Helper to handle placeholders
func (s *SQLStore) rebind(query string) string {
	if s.driverName == "postgres" {
		// Replace ? with $1, $2, etc.
		n := strings.Count(query, "?")
		for i := 1; i <= n; i++ {
			query = strings.Replace(query, "?", fmt.Sprintf("$%d", i), 1)
		}
	}
	return query
}

// mapErr translates driver-level errors into the store package's sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return store.ErrDuplicate
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return store.ErrDuplicate
	}
	return err
}
