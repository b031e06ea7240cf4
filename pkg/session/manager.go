package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/casenav/internal/logging"
	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// keyedMutex hands out one mutex per session id and forgets ids nobody holds.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

type keyedEntry struct {
	mu      sync.Mutex
	waiters int
}

func (k *keyedMutex) lock(id string) func() {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[string]*keyedEntry)
	}
	e, ok := k.entries[id]
	if !ok {
		e = &keyedEntry{}
		k.entries[id] = e
	}
	e.waiters++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		if e.waiters--; e.waiters == 0 {
			delete(k.entries, id)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

// Manager serializes work on menu sessions. Install, Advance, Rebuild and
// Details each run inside one critical section per session id.
type Manager struct {
	store   ports.SessionStore
	locks   keyedMutex
	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker adds a distributed lock around the in-process one.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager wraps store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithLock runs fn while holding the session's lock. fn must talk to the
// store through its own arguments, never through the Manager.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	unlock := m.locks.lock(sessionID)
	defer unlock()

	if m.locker != nil {
		release, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := release(ctx); err != nil {
				m.logger.Warn("Session lock release failed, waiting for expiry",
					"session_id", sessionID,
					"ttl", m.lockTTL,
					"err", err,
				)
			}
		}()
	}
	return fn(ctx)
}

// Use loads the session under its lock and hands it to fn. Changes fn makes
// are only kept if fn saves them.
func (m *Manager) Use(ctx context.Context, sessionID string, fn func(context.Context, *domain.Session) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		return fn(ctx, s)
	})
}

// Update is Use followed by a save of the session fn modified.
func (m *Manager) Update(ctx context.Context, sessionID string, fn func(*domain.Session) error) error {
	return m.Use(ctx, sessionID, func(ctx context.Context, s *domain.Session) error {
		if err := fn(s); err != nil {
			return err
		}
		return m.store.Save(ctx, sessionID, s)
	})
}

// Load reads a session.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	var out *domain.Session
	err := m.Use(ctx, sessionID, func(_ context.Context, s *domain.Session) error {
		out = s
		return nil
	})
	return out, err
}

// Create stores s unless its id is taken, in which case it returns
// domain.ErrSessionExists.
func (m *Manager) Create(ctx context.Context, s *domain.Session) error {
	return m.WithLock(ctx, s.ID, func(ctx context.Context) error {
		_, err := m.store.Load(ctx, s.ID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", domain.ErrSessionExists, s.ID)
		case !errors.Is(err, domain.ErrSessionNotFound):
			return fmt.Errorf("check session %s: %w", s.ID, err)
		}
		if err := m.store.Save(ctx, s.ID, s); err != nil {
			return fmt.Errorf("store session %s: %w", s.ID, err)
		}
		return nil
	})
}

// Save overwrites the stored session.
func (m *Manager) Save(ctx context.Context, s *domain.Session) error {
	return m.WithLock(ctx, s.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, s.ID, s)
	})
}

// Delete removes a session.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List returns stored session ids without locking.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}
