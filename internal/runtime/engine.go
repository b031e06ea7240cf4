package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/casenav/internal/logging"
	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/ports"
	"github.com/google/uuid"
)

// DefaultPageSize is the number of entities returned per entity-list page.
const DefaultPageSize = 10

// maxAutoSkips bounds consecutive auto-selections so a misbehaving evaluator cannot spin forever.
const maxAutoSkips = 32

// Engine is the session navigation engine. It does not lock sessions;
// callers serialize calls per session (see pkg/session.Manager).
type Engine struct {
	store    ports.SessionStore
	forms    ports.FormSessionStore
	search   ports.SearchClient
	sync     ports.SyncClient
	cache    ports.QueryCache
	logger   *slog.Logger
	hooks    domain.NavigationHooks
	pageSize int
	newID    func() string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithNavigationHooks registers observability callbacks.
func WithNavigationHooks(hooks domain.NavigationHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithFormSessionStore persists form sessions at form-entry hand-off.
func WithFormSessionStore(forms ports.FormSessionStore) Option {
	return func(e *Engine) {
		e.forms = forms
	}
}

// WithSearchClient sets the remote search transport.
func WithSearchClient(c ports.SearchClient) Option {
	return func(e *Engine) {
		e.search = c
	}
}

// WithSyncClient sets the remote sync transport.
func WithSyncClient(c ports.SyncClient) Option {
	return func(e *Engine) {
		e.sync = c
	}
}

// WithQueryCache sets the shared query cache.
func WithQueryCache(c ports.QueryCache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithPageSize sets the entity-list page size.
func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithIDGenerator overrides how form session ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// NewEngine creates a new engine persisting to store.
func NewEngine(store ports.SessionStore, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		logger:   logging.NewNop(),
		pageSize: DefaultPageSize,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Input carries the caller's parameters for one Advance.
type Input struct {
	Selections []string
	Offset     int
	SearchText string
	QueryData  domain.QueryData
	Restart    bool
	Auth       domain.Auth
}

func (e *Engine) emitScreen(ctx context.Context, s *domain.Session, t domain.ScreenType) {
	if e.hooks.OnScreen != nil {
		e.hooks.OnScreen(ctx, &domain.ScreenEvent{SessionID: s.ID, AppID: s.AppID, Type: t})
	}
}

func (e *Engine) emitQuery(ctx context.Context, s *domain.Session, queryID string, outcome domain.QueryOutcome) {
	if e.hooks.OnQuery != nil {
		e.hooks.OnQuery(ctx, &domain.QueryEvent{SessionID: s.ID, QueryID: queryID, Outcome: outcome})
	}
}

func (e *Engine) emitSync(ctx context.Context, s *domain.Session, syncID string, ok bool, status int) {
	if e.hooks.OnSync != nil {
		e.hooks.OnSync(ctx, &domain.SyncEvent{SessionID: s.ID, SyncID: syncID, OK: ok, Status: status})
	}
}

func (e *Engine) emitAdvance(ctx context.Context, ev *domain.AdvanceEvent) {
	if e.hooks.OnAdvance != nil {
		e.hooks.OnAdvance(ctx, ev)
	}
}

func (e *Engine) persist(ctx context.Context, s *domain.Session) error {
	s.UpdatedAt = time.Now().UTC()
	if err := e.store.Save(ctx, s.ID, s); err != nil {
		return &domain.SessionNavigationError{SessionID: s.ID, Op: "persist", Err: err}
	}
	return nil
}
