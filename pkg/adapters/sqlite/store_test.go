package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/casenav/pkg/adapters/sqlite"
	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.SessionStore     = (*sqlite.Store)(nil)
	_ ports.FormSessionStore = (*sqlite.Store)(nil)
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "data", "casenav.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, openStore(t))
}

func TestSQLiteStore_FormContract(t *testing.T) {
	ports.RunFormSessionStoreContract(t, openStore(t))
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casenav.db")
	ctx := context.Background()

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	session := domain.NewSession("s1", "worker", "demo", "caseclaim")
	session.Selections = []string{"1"}
	require.NoError(t, store.Save(ctx, "s1", session))
	require.NoError(t, store.Close())

	store, err = sqlite.Open(path)
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, loaded.Selections)
}

func TestSQLiteStore_FormsFor(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.SaveForm(ctx, &domain.FormSession{ID: "f2", MenuSessionID: "m1", FormID: "close", CreatedAt: now.Add(time.Second)}))
	require.NoError(t, store.SaveForm(ctx, &domain.FormSession{ID: "f1", MenuSessionID: "m1", FormID: "visit", CreatedAt: now}))
	require.NoError(t, store.SaveForm(ctx, &domain.FormSession{ID: "f3", MenuSessionID: "m2", FormID: "visit", CreatedAt: now}))

	ids, err := store.FormsFor(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"f1", "f2"}, ids)
}
