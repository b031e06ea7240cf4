package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/casenav/pkg/domain"
)

// DefaultQueryTTL is how long a cached search result stays valid.
const DefaultQueryTTL = 5 * time.Minute

type cacheEntry struct {
	body    []byte
	expires time.Time
}

// QueryCache implements ports.QueryCache in process memory.
// Entries are grouped by identity scope; bodies are copied on the way in and on the way out.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// CacheOption configures the QueryCache.
type CacheOption func(*QueryCache)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *QueryCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) CacheOption {
	return func(c *QueryCache) {
		c.now = now
	}
}

// NewQueryCache creates an empty cache.
func NewQueryCache(opts ...CacheOption) *QueryCache {
	c := &QueryCache{
		entries: make(map[string]map[string]cacheEntry),
		ttl:     DefaultQueryTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *QueryCache) Get(ctx context.Context, key domain.QueryCacheKey) ([]byte, bool, error) {
	scope, k := key.Identity.Scope(), key.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[scope][k]
	if !ok {
		return nil, false, nil
	}
	if c.now().After(entry.expires) {
		delete(c.entries[scope], k)
		return nil, false, nil
	}
	return slices.Clone(entry.body), true, nil
}

func (c *QueryCache) Put(ctx context.Context, key domain.QueryCacheKey, body []byte) error {
	scope := key.Identity.Scope()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[scope] == nil {
		c.entries[scope] = make(map[string]cacheEntry)
	}
	c.entries[scope][key.String()] = cacheEntry{body: slices.Clone(body), expires: c.now().Add(c.ttl)}
	return nil
}

// Invalidate drops every entry of the identity.
func (c *QueryCache) Invalidate(ctx context.Context, identity domain.Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, identity.Scope())
	return nil
}

// Len returns the number of entries still held, expired ones included.
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, scoped := range c.entries {
		n += len(scoped)
	}
	return n
}
