package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/casenav/pkg/domain"
)

// Loader implements ports.DefinitionLoader using an in-memory map.
type Loader struct {
	mu   sync.RWMutex
	defs map[string][]byte
}

// NewLoader creates a loader with the provided raw definitions keyed by app id.
func NewLoader(data map[string]string) *Loader {
	defs := make(map[string][]byte, len(data))
	for k, v := range data {
		defs[k] = []byte(v)
	}
	return &Loader{defs: defs}
}

// Add registers a raw definition, replacing any previous one.
func (l *Loader) Add(appID string, data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.defs[appID] = data
}

// Load retrieves a definition from memory.
func (l *Loader) Load(ctx context.Context, appID string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	data, ok := l.defs[appID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAppNotFound, appID)
	}
	return data, nil
}

// List returns all app IDs in sorted order.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.defs))
	for id := range l.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
