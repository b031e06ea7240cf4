// Package sqlite provides durable session and form session storage backed by
// a single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/casenav/pkg/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS menu_sessions (
	id         TEXT PRIMARY KEY,
	username   TEXT NOT NULL,
	domain     TEXT NOT NULL,
	app_id     TEXT NOT NULL,
	body       BLOB NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_menu_sessions_user ON menu_sessions(domain, username);

CREATE TABLE IF NOT EXISTS form_sessions (
	id              TEXT PRIMARY KEY,
	menu_session_id TEXT NOT NULL,
	form_id         TEXT NOT NULL,
	body            BLOB NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_form_sessions_menu ON form_sessions(menu_session_id);
`

// Store implements ports.SessionStore and ports.FormSessionStore.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, sessionID string, session *domain.Session) error {
	body, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO menu_sessions (id, username, domain, app_id, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			domain = excluded.domain,
			app_id = excluded.app_id,
			body = excluded.body,
			updated_at = excluded.updated_at`,
		sessionID, session.Username, session.Domain, session.AppID, body, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM menu_sessions WHERE id = ?`, sessionID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM menu_sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// List returns session ids, most recently updated first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM menu_sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) SaveForm(ctx context.Context, form *domain.FormSession) error {
	body, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("failed to marshal form session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO form_sessions (id, menu_session_id, form_id, body, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body`,
		form.ID, form.MenuSessionID, form.FormID, body, form.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save form session: %w", err)
	}
	return nil
}

func (s *Store) LoadForm(ctx context.Context, formSessionID string) (*domain.FormSession, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM form_sessions WHERE id = ?`, formSessionID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrFormSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load form session: %w", err)
	}
	var form domain.FormSession
	if err := json.Unmarshal(body, &form); err != nil {
		return nil, fmt.Errorf("failed to unmarshal form session: %w", err)
	}
	return &form, nil
}

// FormsFor returns the form session ids started from a menu session.
func (s *Store) FormsFor(ctx context.Context, menuSessionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM form_sessions WHERE menu_session_id = ? ORDER BY created_at`, menuSessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list form sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
