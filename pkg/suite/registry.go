package suite

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/casenav/internal/logging"
	"github.com/aretw0/casenav/pkg/ports"
)

// Registry resolves app ids to evaluators, parsing each definition once.
type Registry struct {
	loader ports.DefinitionLoader
	logger *slog.Logger

	mu   sync.RWMutex
	apps map[string]*Evaluator
}

// RegistryOption configures the Registry.
type RegistryOption func(*Registry)

// WithLogger configures a logger for the Registry.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a registry backed by loader.
func NewRegistry(loader ports.DefinitionLoader, opts ...RegistryOption) *Registry {
	r := &Registry{
		loader: loader,
		logger: logging.NewNop(),
		apps:   make(map[string]*Evaluator),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Evaluator returns the evaluator for appID, loading it on first use.
func (r *Registry) Evaluator(ctx context.Context, appID string) (ports.Evaluator, error) {
	r.mu.RLock()
	ev, ok := r.apps[appID]
	r.mu.RUnlock()
	if ok {
		return ev, nil
	}

	data, err := r.loader.Load(ctx, appID)
	if err != nil {
		return nil, err
	}
	def, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if def.ID != appID {
		return nil, fmt.Errorf("app definition %q declares id %q", appID, def.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.apps[appID]; ok {
		return existing, nil
	}
	ev = NewEvaluator(def)
	r.apps[appID] = ev
	r.logger.Debug("App loaded", "app_id", appID, "menus", len(def.Menus), "entries", len(def.Entries))
	return ev, nil
}

// Apps lists the ids the loader knows about.
func (r *Registry) Apps(ctx context.Context) ([]string, error) {
	return r.loader.List(ctx)
}

// Forget drops a cached evaluator so the next lookup reloads its definition.
func (r *Registry) Forget(appID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.apps, appID)
}

// Definition returns the parsed definition of appID.
func (r *Registry) Definition(ctx context.Context, appID string) (*Definition, error) {
	ev, err := r.Evaluator(ctx, appID)
	if err != nil {
		return nil, err
	}
	return ev.(*Evaluator).Definition(), nil
}
