package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/casenav"
	"github.com/aretw0/casenav/internal/config"
	"github.com/aretw0/casenav/internal/logging"
	"github.com/aretw0/casenav/internal/metrics"
	"github.com/aretw0/casenav/pkg/adapters/file"
	"github.com/aretw0/casenav/pkg/adapters/memory"
	"github.com/aretw0/casenav/pkg/adapters/redis"
	"github.com/aretw0/casenav/pkg/adapters/remote"
	"github.com/aretw0/casenav/pkg/adapters/sqlite"
	"github.com/aretw0/casenav/pkg/persistence/middleware"
	"github.com/aretw0/casenav/pkg/ports"
	"github.com/aretw0/casenav/pkg/suite"
	backend "github.com/redis/go-redis/v9"
)

// Stack is a fully wired engine plus the resources it holds open.
type Stack struct {
	Engine  *casenav.Engine
	Apps    *suite.Registry
	Metrics *metrics.Collector
	Logger  *slog.Logger

	closers []io.Closer
}

// Close releases database and redis connections.
func (s *Stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}
	return errors.Join(errs...)
}

// NewLogger builds the process logger from the log settings.
func NewLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewWithFormat(w, level, cfg.LogFormat), nil
}

// Build wires stores, cache, locker, remote client and metrics as cfg describes.
func Build(cfg config.Config, logger *slog.Logger) (*Stack, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	st := &Stack{
		Apps:   suite.NewRegistry(file.NewLoader(cfg.AppsDir), suite.WithLogger(logger)),
		Logger: logger,
	}

	var client *backend.Client
	redisClient := func() *backend.Client {
		if client == nil {
			client = backend.NewClient(&backend.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			st.closers = append(st.closers, client)
		}
		return client
	}

	opts := []casenav.Option{
		casenav.WithLogger(logger),
		casenav.WithPageSize(cfg.PageSize),
	}

	store, err := openStore(cfg, st, redisClient)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if forms, ok := store.(ports.FormSessionStore); ok {
		opts = append(opts, casenav.WithFormSessionStore(forms))
	}
	if cfg.Store.Backend == "redis" {
		opts = append(opts, casenav.WithLocker(redis.NewLocker(redisClient(), cfg.Redis.Prefix)))
	}

	wrapped, err := wrapStore(cfg.Store, store)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	opts = append(opts, casenav.WithStore(wrapped))

	switch cfg.Cache.Backend {
	case "memory":
		opts = append(opts, casenav.WithQueryCache(memory.NewQueryCache(memory.WithTTL(cfg.Cache.TTL))))
	case "redis":
		opts = append(opts, casenav.WithQueryCache(redis.NewQueryCache(redisClient(), cfg.Redis.Prefix, cfg.Cache.TTL)))
	}

	rc := remote.New(cfg.Remote.RestoreURL,
		remote.WithTimeout(cfg.Remote.Timeout),
		remote.WithLogger(logger),
	)
	opts = append(opts, casenav.WithSearchClient(rc))
	if cfg.Remote.RestoreURL != "" {
		opts = append(opts, casenav.WithSyncClient(rc))
	} else {
		logger.Warn("No restore URL configured; syncs and install restores are disabled")
	}

	if cfg.Metrics {
		st.Metrics, err = metrics.New()
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("metrics: %w", err)
		}
		opts = append(opts, casenav.WithNavigationHooks(st.Metrics.Hooks()))
	}

	st.Engine, err = casenav.New(st.Apps, opts...)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	logger.Debug("Engine ready",
		"store", cfg.Store.Backend,
		"cache", cfg.Cache.Backend,
		"apps_dir", cfg.AppsDir,
	)
	return st, nil
}

func openStore(cfg config.Config, st *Stack, redisClient func() *backend.Client) (ports.SessionStore, error) {
	switch cfg.Store.Backend {
	case "memory":
		return memory.NewStore(), nil
	case "file":
		return file.New(cfg.Store.Dir), nil
	case "sqlite":
		db, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, db)
		return db, nil
	case "redis":
		return redis.NewFromClient(redisClient(),
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// wrapStore masks PII before sealing the session, so PII runs outermost.
func wrapStore(cfg config.StoreConfig, store ports.SessionStore) (ports.SessionStore, error) {
	var mws []middleware.Middleware
	if len(cfg.PIIPatterns) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.PIIPatterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	active, fallbacks, err := cfg.Keys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallbacks,
		})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return middleware.Chain(store, mws...), nil
}
