package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/casenav/pkg/adapters/redis"
	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.SessionStore      = (*redis.Store)(nil)
	_ ports.FormSessionStore  = (*redis.Store)(nil)
	_ ports.QueryCache        = (*redis.QueryCache)(nil)
	_ ports.DistributedLocker = (*redis.Locker)(nil)
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunSessionStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_FormContract(t *testing.T) {
	_, client := newClient(t)
	ports.RunFormSessionStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sessionID := "session-ttl"

	require.NoError(t, store.Save(ctx, sessionID, domain.NewSession(sessionID, "worker", "demo", "caseclaim")))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Index pruning is driven by the wall clock, not miniredis time.
	time.Sleep(1200 * time.Millisecond)

	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("tenant-a:"))

	require.NoError(t, store.Save(context.Background(), "s1", domain.NewSession("s1", "worker", "demo", "caseclaim")))
	assert.True(t, mr.Exists("tenant-a:session:s1"))
}

func TestRedisQueryCache_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunQueryCacheContract(t, redis.NewQueryCache(client, "", 0))
}

func TestRedisQueryCache_Expires(t *testing.T) {
	mr, client := newClient(t)
	cache := redis.NewQueryCache(client, "", time.Minute)
	ctx := context.Background()
	key := domain.QueryCacheKey{Identity: domain.Identity{Domain: "demo", Username: "alice"}, URL: "https://remote.example/search"}

	require.NoError(t, cache.Put(ctx, key, []byte("{}")))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
