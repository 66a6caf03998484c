package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"umchat/pkg/dialog"
	"umchat/pkg/logger"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS entries (
	position   INTEGER PRIMARY KEY AUTOINCREMENT,
	message_id INTEGER NOT NULL,
	payload    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS user_state (
	id      INTEGER PRIMARY KEY CHECK (id = 1),
	payload TEXT NOT NULL
);`

// SQLiteStore persists history snapshots in a local sqlite database.
type SQLiteStore struct {
	db    *sql.DB
	limit int
}

func NewSQLiteStore(path string, limit int) (*SQLiteStore, error) {
	if path == "" {
		path = "umchat.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db, limit: limit}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadEntries() ([]dialog.DisplayEntry, error) {
	rows, err := s.db.Query(`SELECT payload FROM entries ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []dialog.DisplayEntry
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var entry dialog.DisplayEntry
		if err := json.Unmarshal([]byte(payload), &entry); err != nil {
			// Same recovery rule as the file backend: a corrupt row is
			// skipped, not surfaced.
			logger.DebugCF("storage", "Skipping corrupt history row", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
			continue
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) SaveEntries(entries []dialog.DisplayEntry) error {
	entries = clampEntries(entries, s.limit)

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM entries`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO entries (message_id, payload) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, entry := range entries {
		payload, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(entry.MessageID, string(payload)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ClearEntries() error {
	_, err := s.db.Exec(`DELETE FROM entries`)
	return err
}

func (s *SQLiteStore) LoadUserState() (json.RawMessage, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM user_state WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(payload)) {
		return nil, nil
	}
	return json.RawMessage(payload), nil
}

func (s *SQLiteStore) SaveUserState(state json.RawMessage) error {
	if len(state) == 0 {
		return s.ClearUserState()
	}
	_, err := s.db.Exec(
		`INSERT INTO user_state (id, payload) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET payload = excluded.payload`,
		string(state))
	return err
}

func (s *SQLiteStore) ClearUserState() error {
	_, err := s.db.Exec(`DELETE FROM user_state`)
	return err
}
