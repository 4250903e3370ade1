package session

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wricardo/tile-path-game/game/service"

	_ "modernc.org/sqlite"
)

// SQLitePersistence stores sessions as JSON documents in a SQLite table
type SQLitePersistence struct {
	db            *sql.DB
	configManager service.ConfigManager
}

// NewSQLitePersistence opens or creates the session database at path
func NewSQLitePersistence(path string, configManager service.ConfigManager) (*SQLitePersistence, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		// Wait for locks instead of failing immediately
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	p := &SQLitePersistence{db: db, configManager: configManager}
	if err := p.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return p, nil
}

func (p *SQLitePersistence) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY COLLATE NOCASE,
			config_id TEXT NOT NULL DEFAULT '',
			data TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			last_accessed_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_last_accessed ON sessions(last_accessed_at)`,
	}
	for _, migration := range migrations {
		if _, err := p.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func (p *SQLitePersistence) Close() error {
	return p.db.Close()
}

// Save upserts a session row
func (p *SQLitePersistence) Save(session *service.Session) error {
	data, err := encodeSession(session, false)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	_, err = p.db.Exec(`
		INSERT INTO sessions (id, config_id, data, created_at, last_accessed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			config_id = excluded.config_id,
			data = excluded.data,
			last_accessed_at = excluded.last_accessed_at`,
		strings.ToLower(session.ID), session.ConfigID, string(data),
		session.CreatedAt.UnixNano(), session.LastAccessedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	return nil
}

// Load retrieves a session by ID
func (p *SQLitePersistence) Load(id string) (*service.Session, error) {
	var data string
	err := p.db.QueryRow(`SELECT data FROM sessions WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return decodeSession([]byte(data), p.configManager)
}

// Delete removes a session row
func (p *SQLitePersistence) Delete(id string) error {
	result, err := p.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs, oldest first
func (p *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := p.db.Query(`SELECT id FROM sessions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (p *SQLitePersistence) Exists(id string) bool {
	var n int
	err := p.db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE id = ?`, id).Scan(&n)
	return err == nil && n > 0
}

// DeleteIdleSince removes rows not accessed since cutoff, including sessions
// that were never loaded into memory
func (p *SQLitePersistence) DeleteIdleSince(cutoff time.Time) (int, error) {
	result, err := p.db.Exec(`DELETE FROM sessions WHERE last_accessed_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to delete idle sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
