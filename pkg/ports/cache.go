package ports

import (
	"context"

	"github.com/aretw0/casenav/pkg/domain"
)

// QueryCache holds raw remote search results shared across sessions.
// Entries are scoped by identity; implementations must hand out copies so
// callers can never mutate a cached value.
type QueryCache interface {
	// Get returns the cached body and true on a hit.
	Get(ctx context.Context, key domain.QueryCacheKey) ([]byte, bool, error)

	// Put stores a body under key.
	Put(ctx context.Context, key domain.QueryCacheKey, body []byte) error

	// Invalidate drops every entry belonging to the identity.
	Invalidate(ctx context.Context, identity domain.Identity) error
}
