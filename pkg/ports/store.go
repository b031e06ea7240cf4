package ports

import (
	"context"

	"github.com/aretw0/casenav/pkg/domain"
)

// SessionStore persists menu sessions between navigation calls.
type SessionStore interface {
	// Save persists the session under the given ID.
	Save(ctx context.Context, sessionID string, session *domain.Session) error

	// Load retrieves the session for a given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session for a given ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}

// FormSessionStore persists the form sessions created when navigation hands off to form entry.
type FormSessionStore interface {
	SaveForm(ctx context.Context, form *domain.FormSession) error

	// LoadForm returns domain.ErrFormSessionNotFound when the id is unknown.
	LoadForm(ctx context.Context, formSessionID string) (*domain.FormSession, error)
}
