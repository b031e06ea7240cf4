package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/casenav/pkg/adapters/memory"
	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/persistence/middleware"
	"github.com/aretw0/casenav/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, cfg middleware.EncryptionConfig) middleware.Middleware {
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw
}

func secretSession(id string) *domain.Session {
	s := domain.NewSession(id, "worker", "demo", "caseclaim")
	s.Selections = []string{"1"}
	s.Context.CaseDB = &domain.Instance{ID: "casedb", Entities: []domain.Entity{
		{ID: "c-1", Type: "patient", Properties: map[string]string{"name": "Ada"}},
	}}
	return s
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, "s1", secretSession("s1")))

	stored, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Envelope)
	assert.Nil(t, stored.Context, "context must only exist inside the envelope")
	assert.Empty(t, stored.Selections)
	assert.Equal(t, "worker", stored.Username)

	loaded, err := secure.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Envelope)
	assert.Equal(t, []string{"1"}, loaded.Selections)
	assert.Equal(t, "Ada", loaded.Context.CaseDB.Entities[0].Properties["name"])
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	oldStore := encrypted(t, middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, oldStore.Save(ctx, "rot", secretSession("rot")))

	newStore := encrypted(t, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})(underlying)
	loaded, err := newStore.Load(ctx, "rot")
	require.NoError(t, err, "fallback key must decrypt")

	loaded.Selections = []string{"2"}
	require.NoError(t, newStore.Save(ctx, "rot", loaded))

	_, err = oldStore.Load(ctx, "rot")
	assert.ErrorIs(t, err, middleware.ErrUndecryptable, "old key alone cannot read data sealed with the new key")
}

func TestEncryptionMiddleware_EnvelopeBoundToSession(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, "victim", secretSession("victim")))
	stolen, err := underlying.Load(ctx, "victim")
	require.NoError(t, err)
	require.NoError(t, underlying.Save(ctx, "attacker", stolen))

	_, err = secure.Load(ctx, "attacker")
	assert.ErrorIs(t, err, middleware.ErrUndecryptable)
}

func TestEncryptionMiddleware_RejectsPlainSession(t *testing.T) {
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(context.Background(), "plain", secretSession("plain")))

	secure := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(context.Background(), "plain")
	assert.ErrorIs(t, err, middleware.ErrMissingEnvelope)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("too-short")},
	})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}
