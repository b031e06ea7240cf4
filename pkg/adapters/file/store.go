package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/casenav/pkg/domain"
)

const formsDir = "forms"

// Store implements ports.SessionStore and ports.FormSessionStore using the
// local filesystem. Sessions are JSON files in BasePath; form sessions live
// in its "forms" subdirectory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".casenav/sessions".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".casenav", "sessions")
	}
	return &Store{BasePath: basePath}
}

func validID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid id %q", id)
	}
	return nil
}

// Save persists the session to a JSON file atomically.
func (s *Store) Save(ctx context.Context, sessionID string, session *domain.Session) error {
	if err := validID(sessionID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return writeAtomic(s.BasePath, sessionID, data)
}

// writeAtomic writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func writeAtomic(dir, id string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure directory: %w", err)
	}
	destPath := filepath.Join(dir, id+".json")

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+id+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load retrieves the session from its JSON file.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	if err := validID(sessionID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.BasePath, sessionID+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes the session file.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := validID(sessionID); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.BasePath, sessionID+".json"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns all stored session IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var sessions []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		sessions = append(sessions, strings.TrimSuffix(name, ".json"))
	}
	return sessions, nil
}

// SaveForm persists a form session atomically.
func (s *Store) SaveForm(ctx context.Context, form *domain.FormSession) error {
	if err := validID(form.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(form, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal form session: %w", err)
	}
	return writeAtomic(filepath.Join(s.BasePath, formsDir), form.ID, data)
}

// LoadForm retrieves a form session.
func (s *Store) LoadForm(ctx context.Context, formSessionID string) (*domain.FormSession, error) {
	if err := validID(formSessionID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.BasePath, formsDir, formSessionID+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrFormSessionNotFound
		}
		return nil, fmt.Errorf("failed to read form session file: %w", err)
	}
	var form domain.FormSession
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, fmt.Errorf("failed to unmarshal form session: %w", err)
	}
	return &form, nil
}
