package ports

import (
	"context"

	"github.com/aretw0/casenav/pkg/domain"
)

// RemoteResponse is the status and body of a remote call.
type RemoteResponse struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status.
func (r *RemoteResponse) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// SearchClient posts form-encoded searches to a remote endpoint.
type SearchClient interface {
	PostForm(ctx context.Context, req domain.RemoteRequest, auth domain.Auth) (*RemoteResponse, error)
}

// SyncClient posts sync requests and fetches restore payloads.
type SyncClient interface {
	// Sync performs the remote side effect (e.g. a case claim).
	Sync(ctx context.Context, req domain.RemoteRequest, auth domain.Auth) (*RemoteResponse, error)

	// Restore fetches the local storage payload for an identity.
	Restore(ctx context.Context, identity domain.Identity, auth domain.Auth) ([]byte, error)
}
