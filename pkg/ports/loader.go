package ports

import "context"

// DefinitionLoader retrieves raw application definitions.
// This decouples the app registry from where definitions live (directory, memory).
type DefinitionLoader interface {
	// Load returns the raw definition of an application by ID.
	Load(ctx context.Context, appID string) ([]byte, error)

	// List returns the IDs of all available applications.
	List(ctx context.Context) ([]string, error)
}
