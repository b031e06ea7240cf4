package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/casenav/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultQueryTTL is how long a cached search result stays valid.
const DefaultQueryTTL = 5 * time.Minute

// QueryCache implements ports.QueryCache using Redis. Each identity keeps a
// set of its entry keys so Invalidate does not need to scan the keyspace.
type QueryCache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// NewQueryCache creates a cache over client. A non-positive ttl uses DefaultQueryTTL.
func NewQueryCache(client *backend.Client, prefix string, ttl time.Duration) *QueryCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultQueryTTL
	}
	return &QueryCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *QueryCache) entryKey(key domain.QueryCacheKey) string {
	return c.prefix + "query:" + key.String()
}

func (c *QueryCache) scopeKey(identity domain.Identity) string {
	return c.prefix + "query-scope:" + identity.Scope()
}

func (c *QueryCache) Get(ctx context.Context, key domain.QueryCacheKey) ([]byte, bool, error) {
	body, err := c.client.Get(ctx, c.entryKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read query cache: %w", err)
	}
	return body, true, nil
}

func (c *QueryCache) Put(ctx context.Context, key domain.QueryCacheKey, body []byte) error {
	scope := c.scopeKey(key.Identity)
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.entryKey(key), body, c.ttl)
	pipe.SAdd(ctx, scope, c.entryKey(key))
	pipe.Expire(ctx, scope, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write query cache: %w", err)
	}
	return nil
}

// Invalidate drops every entry of the identity.
func (c *QueryCache) Invalidate(ctx context.Context, identity domain.Identity) error {
	scope := c.scopeKey(identity)
	keys, err := c.client.SMembers(ctx, scope).Result()
	if err != nil {
		return fmt.Errorf("failed to read query cache index: %w", err)
	}
	if err := c.client.Del(ctx, append(keys, scope)...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate query cache: %w", err)
	}
	return nil
}
