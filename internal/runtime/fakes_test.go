package runtime_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aretw0/casenav/internal/runtime"
	"github.com/aretw0/casenav/pkg/adapters/memory"
	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/ports"
	"github.com/aretw0/casenav/pkg/suite"
	"github.com/stretchr/testify/require"
)

const claimedCaseID = "0156fa3e-093e-4136-b95c-01b13dae66c6"

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "pkg", "suite", "testdata", name))
	require.NoError(t, err)
	return data
}

// fakeRemote answers searches with a fixed body and syncs with a fixed status.
type fakeRemote struct {
	mu sync.Mutex

	searchStatus int
	searchBody   []byte
	searchErr    error

	syncStatus int
	syncBody   []byte
	restore    []byte

	searches []domain.RemoteRequest
	syncs    []domain.RemoteRequest
	restores int
}

func newFakeRemote(t *testing.T) *fakeRemote {
	return &fakeRemote{
		searchStatus: 200,
		searchBody:   fixture(t, "search.json"),
		syncStatus:   200,
		restore:      fixture(t, "restore_claimed.json"),
	}
}

func (f *fakeRemote) PostForm(_ context.Context, req domain.RemoteRequest, _ domain.Auth) (*ports.RemoteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, req)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &ports.RemoteResponse{StatusCode: f.searchStatus, Body: f.searchBody}, nil
}

func (f *fakeRemote) Sync(_ context.Context, req domain.RemoteRequest, _ domain.Auth) (*ports.RemoteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs = append(f.syncs, req)
	return &ports.RemoteResponse{StatusCode: f.syncStatus, Body: f.syncBody}, nil
}

func (f *fakeRemote) Restore(_ context.Context, _ domain.Identity, _ domain.Auth) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restores++
	return f.restore, nil
}

type harness struct {
	engine  *runtime.Engine
	store   *memory.Store
	cache   *memory.QueryCache
	remote  *fakeRemote
	ev      *suite.Evaluator
	session *domain.Session
}

func newHarness(t *testing.T, opts ...runtime.Option) *harness {
	t.Helper()
	def, err := suite.Parse(fixture(t, "caseclaim.yaml"))
	require.NoError(t, err)

	h := &harness{
		store:  memory.NewStore(),
		cache:  memory.NewQueryCache(),
		remote: newFakeRemote(t),
		ev:     suite.NewEvaluator(def),
	}
	base := []runtime.Option{
		runtime.WithFormSessionStore(h.store),
		runtime.WithSearchClient(h.remote),
		runtime.WithSyncClient(h.remote),
		runtime.WithQueryCache(h.cache),
		runtime.WithIDGenerator(func() string { return "form-1" }),
	}
	h.engine = runtime.NewEngine(h.store, append(base, opts...)...)

	h.session = domain.NewSession("s-1", "worker", "demo", "caseclaim")
	require.NoError(t, h.ev.LoadRestore(h.session.Context, fixture(t, "restore.json")))
	return h
}

func (h *harness) advance(t *testing.T, in runtime.Input) *domain.Response {
	t.Helper()
	resp, err := h.engine.Advance(context.Background(), h.session, h.ev, in)
	require.NoError(t, err)
	return resp
}

func searchAll(inputs map[string]string) domain.QueryData {
	return domain.QueryData{"case_search.m1": {Execute: true, Inputs: inputs}}
}

// failingStore rejects every save.
type failingStore struct {
	ports.SessionStore
}

func (failingStore) Save(context.Context, string, *domain.Session) error {
	return errors.New("disk full")
}

// oddScreen satisfies domain.Screen without being one of the known variants.
type oddScreen struct {
	*domain.MenuScreen
}

type oddEvaluator struct {
	ports.Evaluator
}

func (oddEvaluator) NextScreen(*domain.EvalContext) (domain.Screen, error) {
	return oddScreen{&domain.MenuScreen{ID: "odd"}}, nil
}

// spinningEvaluator offers an auto-selectable list forever.
type spinningEvaluator struct {
	ports.Evaluator
	applied int
}

func (s *spinningEvaluator) NextScreen(*domain.EvalContext) (domain.Screen, error) {
	return &domain.EntityScreen{DatumID: "loop", AutoSelect: true, Entities: []domain.Entity{{ID: "e-1"}}}, nil
}

func (s *spinningEvaluator) IsAutoSkippable(domain.Screen) bool { return true }

func (s *spinningEvaluator) ApplySelection(*domain.EvalContext, domain.Screen, string) error {
	s.applied++
	return nil
}

// resolvingEvaluator records the screens replay marks as resolved.
type resolvingEvaluator struct {
	*suite.Evaluator
	resolved []string
}

func (r *resolvingEvaluator) MarkResolved(ec *domain.EvalContext, screen domain.Screen) error {
	switch sc := screen.(type) {
	case *domain.QueryScreen:
		r.resolved = append(r.resolved, sc.ID)
	case *domain.SyncScreen:
		r.resolved = append(r.resolved, sc.ID)
	}
	return r.Evaluator.MarkResolved(ec, screen)
}
