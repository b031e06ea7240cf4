package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/casenav/pkg/adapters/memory"
	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware([]string{"national_id", "^phone"})
	require.NoError(t, err)
	store := mw(underlying)
	ctx := context.Background()

	session := domain.NewSession("pii", "worker", "demo", "caseclaim")
	session.Context.Answers["case_search.m1"] = map[string]string{
		"name":        "Ada",
		"national_id": "999-99-9999",
		"phone_home":  "555-0100",
	}

	require.NoError(t, store.Save(ctx, "pii", session))
	assert.Equal(t, "999-99-9999", session.Context.Answers["case_search.m1"]["national_id"], "caller's session must not change")

	stored, err := underlying.Load(ctx, "pii")
	require.NoError(t, err)
	answers := stored.Context.Answers["case_search.m1"]
	assert.Equal(t, "Ada", answers["name"])
	assert.Equal(t, "***", answers["national_id"])
	assert.Equal(t, "***", answers["phone_home"])
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain_OrdersOutermostFirst(t *testing.T) {
	underlying := memory.NewStore()
	pii, err := middleware.NewPIIMiddleware([]string{"secret"})
	require.NoError(t, err)
	enc := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	store := middleware.Chain(underlying, pii, enc)
	ctx := context.Background()

	session := domain.NewSession("chain", "worker", "demo", "caseclaim")
	session.Context.Answers["q"] = map[string]string{"secret": "x"}
	require.NoError(t, store.Save(ctx, "chain", session))

	raw, err := underlying.Load(ctx, "chain")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Envelope)

	loaded, err := store.Load(ctx, "chain")
	require.NoError(t, err)
	assert.Equal(t, "***", loaded.Context.Answers["q"]["secret"])
}
