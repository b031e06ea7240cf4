package casenav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/casenav/internal/logging"
	"github.com/aretw0/casenav/internal/runtime"
	"github.com/aretw0/casenav/pkg/adapters/memory"
	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/ports"
	"github.com/aretw0/casenav/pkg/session"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// Engine is the high-level entry point of casenav. It owns session locking
// and persistence around the navigation runtime.
type Engine struct {
	apps     ports.AppRegistry
	runtime  *runtime.Engine
	sessions *session.Manager
	forms    ports.FormSessionStore
	sync     ports.SyncClient
	validate *validator.Validate
	logger   *slog.Logger
	newID    func() string

	store       ports.SessionStore
	locker      ports.DistributedLocker
	runtimeOpts []runtime.Option
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets the session store. If it also implements
// ports.FormSessionStore it stores form sessions too, unless
// WithFormSessionStore says otherwise.
func WithStore(store ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithFormSessionStore sets where form sessions are recorded at hand-off.
func WithFormSessionStore(forms ports.FormSessionStore) Option {
	return func(e *Engine) {
		e.forms = forms
	}
}

// WithSearchClient sets the remote search transport.
func WithSearchClient(c ports.SearchClient) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithSearchClient(c))
	}
}

// WithSyncClient sets the remote sync and restore transport.
func WithSyncClient(c ports.SyncClient) Option {
	return func(e *Engine) {
		e.sync = c
	}
}

// WithQueryCache sets the shared query cache.
func WithQueryCache(c ports.QueryCache) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithQueryCache(c))
	}
}

// WithLocker coordinates session access across replicas.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithNavigationHooks registers observability hooks.
func WithNavigationHooks(hooks domain.NavigationHooks) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithNavigationHooks(hooks))
	}
}

// WithPageSize sets the entity list page size.
func WithPageSize(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithPageSize(n))
	}
}

// WithIDGenerator replaces uuid generation for session and form session ids.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine serving the applications of apps.
// Sessions are kept in memory unless WithStore is given.
func New(apps ports.AppRegistry, opts ...Option) (*Engine, error) {
	if apps == nil {
		return nil, errors.New("app registry is required")
	}
	e := &Engine{
		apps:     apps,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logging.NewNop(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.forms == nil {
		if fs, ok := e.store.(ports.FormSessionStore); ok {
			e.forms = fs
		}
	}

	e.sessions = session.NewManager(e.store,
		session.WithLocker(e.locker),
		session.WithLogger(e.logger),
	)

	rtOpts := []runtime.Option{
		runtime.WithLogger(e.logger),
		runtime.WithIDGenerator(e.newID),
	}
	if e.forms != nil {
		rtOpts = append(rtOpts, runtime.WithFormSessionStore(e.forms))
	}
	if e.sync != nil {
		rtOpts = append(rtOpts, runtime.WithSyncClient(e.sync))
	}
	rtOpts = append(rtOpts, e.runtimeOpts...)
	e.runtime = runtime.NewEngine(e.store, rtOpts...)

	return e, nil
}

var _ ports.Navigator = (*Engine)(nil)

func (e *Engine) check(req any) error {
	if err := e.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return nil
}

// Install creates a session for req.Username on req.AppID, seeds local
// storage from a restore when a sync client is configured, and returns the
// root screen.
func (e *Engine) Install(ctx context.Context, req domain.InstallRequest) (*domain.Response, error) {
	if err := e.check(req); err != nil {
		return nil, err
	}
	locale := ""
	if req.Locale != "" {
		tag, err := language.Parse(req.Locale)
		if err != nil {
			return nil, fmt.Errorf("%w: locale %q: %w", domain.ErrInvalidRequest, req.Locale, err)
		}
		locale = tag.String()
	}

	ev, err := e.apps.Evaluator(ctx, req.AppID)
	if err != nil {
		return nil, err
	}

	s := domain.NewSession(e.newID(), req.Username, req.Domain, req.AppID)
	s.Locale = locale
	s.RestoreAs = req.RestoreAs
	s.OneQuestionPerScreen = req.OneQuestionPerScreen

	if e.sync != nil {
		restore, err := e.sync.Restore(ctx, s.Identity(), req.Auth)
		if err != nil {
			return nil, fmt.Errorf("restore for %s: %w", s.Identity().Scope(), err)
		}
		if err := ev.LoadRestore(s.Context, restore); err != nil {
			return nil, fmt.Errorf("load restore: %w", err)
		}
	}

	if err := e.sessions.Create(ctx, s); err != nil {
		return nil, err
	}

	var resp *domain.Response
	err = e.sessions.WithLock(ctx, s.ID, func(ctx context.Context) error {
		var err error
		resp, err = e.runtime.Advance(ctx, s, ev, runtime.Input{Auth: req.Auth})
		return err
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("Session installed", "session_id", s.ID, "app_id", s.AppID, "username", s.Username)
	return resp, nil
}

// Advance applies req.Selections from the root of the session's application.
func (e *Engine) Advance(ctx context.Context, req domain.NavigationRequest) (*domain.Response, error) {
	if err := e.check(req); err != nil {
		return nil, err
	}
	queryData, err := domain.DecodeQueryData(req.QueryData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	var resp *domain.Response
	err = e.withSession(ctx, req.SessionID, func(ctx context.Context, s *domain.Session, ev ports.Evaluator) error {
		var err error
		resp, err = e.runtime.Advance(ctx, s, ev, runtime.Input{
			Selections: req.Selections,
			Offset:     req.Offset,
			SearchText: req.SearchText,
			QueryData:  queryData,
			Restart:    req.Restart,
			Auth:       req.Auth,
		})
		return err
	})
	return resp, err
}

// Rebuild recomputes the session's selections from its recorded frame.
func (e *Engine) Rebuild(ctx context.Context, sessionID string) (*domain.Response, error) {
	var resp *domain.Response
	err := e.withSession(ctx, sessionID, func(ctx context.Context, s *domain.Session, ev ports.Evaluator) error {
		var err error
		resp, err = e.runtime.Rebuild(ctx, s, ev)
		return err
	})
	return resp, err
}

// Details returns the detail view of req.EntityID on the entity list reached
// by req.Selections. The stored session is not modified.
func (e *Engine) Details(ctx context.Context, req domain.DetailRequest) (*domain.EntityDetail, error) {
	if err := e.check(req); err != nil {
		return nil, err
	}
	var detail *domain.EntityDetail
	err := e.withSession(ctx, req.SessionID, func(ctx context.Context, s *domain.Session, ev ports.Evaluator) error {
		var err error
		detail, err = e.runtime.Details(ctx, s, ev, req.Selections, req.EntityID)
		return err
	})
	return detail, err
}

// Session loads a stored session.
func (e *Engine) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	return e.sessions.Load(ctx, sessionID)
}

// DeleteSession removes a stored session.
func (e *Engine) DeleteSession(ctx context.Context, sessionID string) error {
	return e.sessions.Delete(ctx, sessionID)
}

// Sessions lists stored session ids.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// FormSession loads a form session recorded at hand-off.
func (e *Engine) FormSession(ctx context.Context, formSessionID string) (*domain.FormSession, error) {
	if e.forms == nil {
		return nil, domain.ErrFormSessionNotFound
	}
	return e.forms.LoadForm(ctx, formSessionID)
}

// withSession runs fn on the loaded session while holding its lock.
func (e *Engine) withSession(ctx context.Context, sessionID string, fn func(context.Context, *domain.Session, ports.Evaluator) error) error {
	return e.sessions.Use(ctx, sessionID, func(ctx context.Context, s *domain.Session) error {
		ev, err := e.apps.Evaluator(ctx, s.AppID)
		if err != nil {
			return err
		}
		return fn(ctx, s, ev)
	})
}
