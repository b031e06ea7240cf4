package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/casenav/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(sessionID, "worker", "demo", "caseclaim")
		session.Selections = []string{"1", "action 1"}
		session.Breadcrumbs = []string{"Case Claim", "Follow Up"}
		session.Context.Frame.Push(domain.Step{Type: domain.StepCommand, ID: "m1"})
		session.Context.CaseDB = &domain.Instance{ID: "casedb", Entities: []domain.Entity{
			{ID: "c1", Type: "patient", Properties: map[string]string{"name": "Ada"}},
		}}
		session.Context.SetVolatile("exists:c1", "true")

		err := store.Save(ctx, sessionID, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, session.Username, loaded.Username)
		assert.Equal(t, session.AppID, loaded.AppID)
		assert.Equal(t, []string{"1", "action 1"}, loaded.Selections)
		require.NotNil(t, loaded.Context)
		assert.Equal(t, session.Context.Frame.Steps, loaded.Context.Frame.Steps)
		require.NotNil(t, loaded.Context.CaseDB)
		assert.Equal(t, "Ada", loaded.Context.CaseDB.Entities[0].Properties["name"])
		assert.Empty(t, loaded.Context.Volatiles, "volatiles must not be persisted")
	})

	t.Run("Save Isolates Caller", func(t *testing.T) {
		session := domain.NewSession(sessionID, "worker", "demo", "caseclaim")
		require.NoError(t, store.Save(ctx, sessionID, session))

		session.Selections = append(session.Selections, "2")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Empty(t, loaded.Selections)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSession(sessionID, "worker", "demo", "caseclaim"))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(id1, "worker", "demo", "caseclaim"))
		_ = store.Save(ctx, id2, domain.NewSession(id2, "worker", "demo", "caseclaim"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunFormSessionStoreContract verifies a FormSessionStore implementation.
func RunFormSessionStoreContract(t *testing.T, store FormSessionStore) {
	ctx := context.Background()

	form := &domain.FormSession{
		ID:            "form-" + time.Now().Format("20060102150405"),
		MenuSessionID: "menu-1",
		AppID:         "caseclaim",
		Username:      "worker",
		Domain:        "demo",
		FormID:        "followup",
		Title:         "Follow Up",
		Data:          map[string]string{"case_id": "c1"},
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, store.SaveForm(ctx, form))

	loaded, err := store.LoadForm(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, form.FormID, loaded.FormID)
	assert.Equal(t, "c1", loaded.Data["case_id"])
	assert.True(t, form.CreatedAt.Equal(loaded.CreatedAt))

	_, err = store.LoadForm(ctx, "missing-"+form.ID)
	assert.ErrorIs(t, err, domain.ErrFormSessionNotFound)
}

// RunQueryCacheContract verifies a QueryCache implementation.
func RunQueryCacheContract(t *testing.T, cache QueryCache) {
	ctx := context.Background()
	alice := domain.Identity{Domain: "demo", Username: "alice"}
	bob := domain.Identity{Domain: "demo", Username: "bob"}

	keyFor := func(id domain.Identity) domain.QueryCacheKey {
		return domain.QueryCacheKey{
			Identity: id,
			URL:      "https://remote.example/search",
			Params:   map[string][]string{"name": {"Ada"}},
		}
	}

	t.Run("Miss", func(t *testing.T) {
		_, ok, err := cache.Get(ctx, keyFor(alice))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Hit Returns Copy", func(t *testing.T) {
		require.NoError(t, cache.Put(ctx, keyFor(alice), []byte(`{"entities":[]}`)))

		body, ok, err := cache.Get(ctx, keyFor(alice))
		require.NoError(t, err)
		require.True(t, ok)
		body[0] = 'X'

		again, ok, err := cache.Get(ctx, keyFor(alice))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, `{"entities":[]}`, string(again))
	})

	t.Run("Scoped By Identity", func(t *testing.T) {
		_, ok, err := cache.Get(ctx, keyFor(bob))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Invalidate", func(t *testing.T) {
		require.NoError(t, cache.Put(ctx, keyFor(bob), []byte(`{}`)))
		require.NoError(t, cache.Invalidate(ctx, alice))

		_, ok, err := cache.Get(ctx, keyFor(alice))
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = cache.Get(ctx, keyFor(bob))
		require.NoError(t, err)
		assert.True(t, ok, "other identities are untouched")
	})

	t.Run("Separator In Identity Parts", func(t *testing.T) {
		tenantA := domain.Identity{Domain: "demo_x", Username: "worker"}
		tenantB := domain.Identity{Domain: "demo", Username: "x_worker"}
		actingAs := domain.Identity{Domain: "demo", Username: "x", AsUser: "y"}
		plain := domain.Identity{Domain: "demo", Username: "x_y"}

		require.NoError(t, cache.Put(ctx, keyFor(tenantA), []byte(`{"tenant":"a"}`)))
		require.NoError(t, cache.Put(ctx, keyFor(actingAs), []byte(`{"tenant":"as"}`)))

		_, ok, err := cache.Get(ctx, keyFor(tenantB))
		require.NoError(t, err)
		assert.False(t, ok, "results must not leak between identities")
		_, ok, err = cache.Get(ctx, keyFor(plain))
		require.NoError(t, err)
		assert.False(t, ok, "acting as another user is its own identity")

		require.NoError(t, cache.Put(ctx, keyFor(tenantB), []byte(`{"tenant":"b"}`)))
		require.NoError(t, cache.Invalidate(ctx, tenantB))

		body, ok, err := cache.Get(ctx, keyFor(tenantA))
		require.NoError(t, err)
		require.True(t, ok, "invalidating one identity keeps the other")
		assert.Equal(t, `{"tenant":"a"}`, string(body))
	})
}

// RunDefinitionLoaderContract verifies a DefinitionLoader that was seeded with setupData.
func RunDefinitionLoaderContract(t *testing.T, loader DefinitionLoader, setupData map[string][]byte) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_Success", func(t *testing.T) {
		for id, expected := range setupData {
			content, err := loader.Load(ctx, id)
			require.NoError(t, err, "loading %s", id)
			assert.Equal(t, string(expected), string(content))
		}
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := loader.Load(ctx, "non-existent-app")
		assert.ErrorIs(t, err, domain.ErrAppNotFound)
	})

	t.Run("List", func(t *testing.T) {
		ids, err := loader.List(ctx)
		require.NoError(t, err)
		for id := range setupData {
			assert.Contains(t, ids, id)
		}
	})
}
