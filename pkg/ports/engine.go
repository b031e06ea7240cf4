package ports

import (
	"context"

	"github.com/aretw0/casenav/pkg/domain"
)

// Navigator is the caller surface of the engine, used by transport adapters (HTTP, CLI).
type Navigator interface {
	// Install creates a session positioned at the application root.
	Install(ctx context.Context, req domain.InstallRequest) (*domain.Response, error)

	// Advance applies selections from the root and returns the resulting screen.
	Advance(ctx context.Context, req domain.NavigationRequest) (*domain.Response, error)

	// Rebuild recomputes a session's selections from its recorded frame.
	Rebuild(ctx context.Context, sessionID string) (*domain.Response, error)

	// Details returns the detail view of one entity reached by selections.
	Details(ctx context.Context, req domain.DetailRequest) (*domain.EntityDetail, error)
}
