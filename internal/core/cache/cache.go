package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"deskchat/internal/core/models"
)

// Store is a local SQLite cache of the per-user session list. It exists
// so the history panel renders immediately and `sessions list --cached`
// works offline; the server copy is always authoritative and every
// refresh replaces the cached rows wholesale.
type Store struct {
	conn *sql.DB
}

// New opens (or creates) the cache database and initializes its schema.
func New(dbPath string) (*Store, error) {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite only supports one writer
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	s := &Store{conn: conn}
	if err := s.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			user_email         TEXT NOT NULL,
			session_id         TEXT NOT NULL,
			title              TEXT NOT NULL DEFAULT '',
			last_updated       TEXT NOT NULL DEFAULT '',
			conversation_count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_email, session_id)
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_user_updated
			ON sessions(user_email, last_updated DESC);
	`)
	return err
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// Sessions returns the cached list for a user, most recently updated
// first.
func (s *Store) Sessions(userEmail string) ([]models.Session, error) {
	rows, err := s.conn.Query(`
		SELECT session_id, title, last_updated, conversation_count
		FROM sessions
		WHERE user_email = ?
		ORDER BY last_updated DESC
	`, userEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to read session cache: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var sess models.Session
		var updated string
		if err := rows.Scan(&sess.SessionID, &sess.Title, &updated, &sess.ConversationCount); err != nil {
			return nil, fmt.Errorf("failed to scan cached session: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, updated); err == nil {
			sess.LastUpdated = t
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// ReplaceSessions swaps a user's cached list for a fresh server copy.
func (s *Store) ReplaceSessions(userEmail string, sessions []models.Session) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin cache transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM sessions WHERE user_email = ?`, userEmail); err != nil {
		return fmt.Errorf("failed to clear session cache: %w", err)
	}
	for _, sess := range sessions {
		_, err := tx.Exec(`
			INSERT INTO sessions (user_email, session_id, title, last_updated, conversation_count)
			VALUES (?, ?, ?, ?, ?)
		`, userEmail, sess.SessionID, sess.Title, sess.LastUpdated.Format(time.RFC3339), sess.ConversationCount)
		if err != nil {
			return fmt.Errorf("failed to cache session %s: %w", sess.SessionID, err)
		}
	}
	return tx.Commit()
}

// DeleteSession drops one cached entry.
func (s *Store) DeleteSession(userEmail, sessionID string) error {
	if _, err := s.conn.Exec(`
		DELETE FROM sessions WHERE user_email = ? AND session_id = ?
	`, userEmail, sessionID); err != nil {
		return fmt.Errorf("failed to delete cached session %s: %w", sessionID, err)
	}
	return nil
}
