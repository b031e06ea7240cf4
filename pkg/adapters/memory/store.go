package memory

import (
	"context"
	"sync"

	"github.com/aretw0/casenav/pkg/domain"
)

// Store implements ports.SessionStore and ports.FormSessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data  map[string]*domain.Session
	forms map[string]*domain.FormSession
	mu    sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data:  make(map[string]*domain.Session),
		forms: make(map[string]*domain.FormSession),
	}
}

// Save persists a deep copy of the session, similar to serialization.
func (s *Store) Save(ctx context.Context, sessionID string, session *domain.Session) error {
	copied := session.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = copied
	return nil
}

// Load returns a copy so callers can't mutate store state directly by pointer.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns stored session IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	return sessions, nil
}

// SaveForm persists a copy of the form session.
func (s *Store) SaveForm(ctx context.Context, form *domain.FormSession) error {
	copied := cloneForm(form)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms[form.ID] = copied
	return nil
}

// LoadForm retrieves a form session by ID.
func (s *Store) LoadForm(ctx context.Context, formSessionID string) (*domain.FormSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	form, ok := s.forms[formSessionID]
	if !ok {
		return nil, domain.ErrFormSessionNotFound
	}
	return cloneForm(form), nil
}

func cloneForm(f *domain.FormSession) *domain.FormSession {
	out := *f
	if f.Data != nil {
		out.Data = make(map[string]string, len(f.Data))
		for k, v := range f.Data {
			out.Data[k] = v
		}
	}
	return &out
}
