package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/habitsync/internal/adapters/driven/storage/memory"
	redisstore "github.com/custodia-labs/habitsync/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/habitsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/habitsync/internal/core/domain"
	"github.com/custodia-labs/habitsync/internal/core/ports/driven"
	"github.com/custodia-labs/habitsync/internal/logger"
)

// Backend names.
const (
	BackendAuto   = "auto"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// DefaultTimeout bounds each store call when Config.Timeout is unset.
const DefaultTimeout = 5 * time.Second

// Configuration keys reported in MissingConfigError.
const (
	keyRedisURL   = "REDIS_URL"
	keySQLiteDir  = "STORE_SQLITE_DIR"
)

// Config describes which backend to use and how to reach it.
type Config struct {
	// Backend is auto, redis, sqlite or memory. Auto picks redis when a
	// URL is set, then sqlite when a directory is set.
	Backend    string
	RedisURL   string
	RedisToken string
	SQLiteDir  string
	// Strict requires a durable, reachable backend.
	Strict  bool
	Timeout time.Duration
}

// Opener connects to a named backend.
type Opener func(ctx context.Context, cfg Config) (driven.Backend, error)

// Option configures a Selector.
type Option func(*Selector)

// WithOpener replaces the opener for a backend name.
func WithOpener(name string, open Opener) Option {
	return func(s *Selector) {
		s.openers[name] = open
	}
}

// pinger is implemented by backends that can check reachability.
type pinger interface {
	Ping(ctx context.Context) error
}

// Selector lazily chooses a backend and implements driven.Backend over it.
type Selector struct {
	cfg     Config
	openers map[string]Opener

	mu      sync.Mutex
	backend driven.Backend
}

var _ driven.Backend = (*Selector)(nil)

// NewSelector creates a selector. No backend is contacted until first use.
func NewSelector(cfg Config, opts ...Option) *Selector {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	s := &Selector{
		cfg: cfg,
		openers: map[string]Opener{
			BackendRedis:  openRedis,
			BackendSQLite: openSQLite,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func openRedis(_ context.Context, cfg Config) (driven.Backend, error) {
	return redisstore.New(redisstore.Options{URL: cfg.RedisURL, Token: cfg.RedisToken})
}

func openSQLite(_ context.Context, cfg Config) (driven.Backend, error) {
	return sqlite.NewStore(cfg.SQLiteDir)
}

// Name returns the selected backend name, or "" before selection.
func (s *Selector) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend == nil {
		return ""
	}
	return s.backend.Name()
}

// Close closes the selected backend, if any.
func (s *Selector) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend == nil {
		return nil
	}
	err := s.backend.Close()
	s.backend = nil
	return err
}

// Select resolves the backend now instead of on first use.
func (s *Selector) Select(ctx context.Context) error {
	_, err := s.current(ctx)
	return err
}

// current returns the cached backend, selecting one if needed.
// A failed selection is not cached.
func (s *Selector) current(ctx context.Context) (driven.Backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend != nil {
		return s.backend, nil
	}

	backend, err := s.choose(ctx)
	if err != nil {
		return nil, err
	}
	s.backend = backend
	return backend, nil
}

func (s *Selector) choose(ctx context.Context) (driven.Backend, error) {
	name, err := s.cfg.durable()
	if err != nil {
		var missing *domain.MissingConfigError
		if s.cfg.Strict || !errors.As(err, &missing) {
			return nil, err
		}
		logger.Warn("no durable credential store configured, using in-memory store",
			"missing", strings.Join(missing.Keys, ","))
		return memory.NewStore(), nil
	}

	if name == BackendMemory {
		if s.cfg.Strict {
			return nil, fmt.Errorf("%w: memory store is not allowed in strict mode", domain.ErrConfiguration)
		}
		logger.Info("credential store selected", "backend", BackendMemory)
		return memory.NewStore(), nil
	}

	backend, err := s.open(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			return nil, err
		}
		if s.cfg.Strict {
			return nil, domain.NewBackendUnavailableError("backend selection", err)
		}
		logger.Warn("credential store unreachable, using in-memory store for this process",
			"backend", name, "error", err)
		return memory.NewStore(), nil
	}

	logger.Info("credential store selected", "backend", name)
	return backend, nil
}

// open connects to a backend and checks it is reachable.
func (s *Selector) open(ctx context.Context, name string) (driven.Backend, error) {
	open, ok := s.openers[name]
	if !ok {
		return nil, fmt.Errorf("no opener for backend %q", name)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	backend, err := open(ctx, s.cfg)
	if err != nil {
		return nil, err
	}
	if p, ok := backend.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			_ = backend.Close()
			return nil, err
		}
	}
	return backend, nil
}

// durable returns the backend the configuration asks for.
func (c Config) durable() (string, error) {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case "", BackendAuto:
		if c.RedisURL != "" {
			return BackendRedis, c.checkRedis()
		}
		if c.SQLiteDir != "" {
			return BackendSQLite, nil
		}
		return "", &domain.MissingConfigError{Component: "store", Keys: []string{keyRedisURL, keySQLiteDir}}
	case BackendRedis:
		return BackendRedis, c.checkRedis()
	case BackendSQLite:
		return BackendSQLite, nil
	case BackendMemory:
		return BackendMemory, nil
	default:
		return "", fmt.Errorf("%w: unknown store backend %q", domain.ErrConfiguration, c.Backend)
	}
}

// checkRedis reports missing or unusable Redis settings. An Upstash REST
// URL is rejected outright: its token is not the Redis protocol password, so
// connecting with it would only fail at the first command.
func (c Config) checkRedis() error {
	if c.RedisURL == "" {
		return &domain.MissingConfigError{Component: "store", Keys: []string{keyRedisURL}}
	}
	if isRESTURL(c.RedisURL) {
		return fmt.Errorf("%w: %s is an Upstash REST URL; set REDIS_URL=rediss://default:<password>@<host>:6379 instead",
			domain.ErrConfiguration, c.RedisURL)
	}
	return nil
}

func isRESTURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme == "https"
}

// do runs fn against the selected backend under the store timeout.
func (s *Selector) do(ctx context.Context, op string, fn func(context.Context, driven.Backend) error) error {
	backend, err := s.current(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if err := fn(ctx, backend); err != nil {
		if errors.Is(err, domain.ErrCorruptState) {
			return err
		}
		return domain.NewBackendUnavailableError(op, err)
	}
	return nil
}

// Get retrieves the record for a user.
func (s *Selector) Get(ctx context.Context, userID string) (*domain.Record, error) {
	var record *domain.Record
	err := s.do(ctx, "get", func(ctx context.Context, b driven.Backend) error {
		var err error
		record, err = b.Get(ctx, userID)
		return err
	})
	return record, err
}

// Set stores or replaces a record.
func (s *Selector) Set(ctx context.Context, userID string, record domain.Record) error {
	return s.do(ctx, "set", func(ctx context.Context, b driven.Backend) error {
		return b.Set(ctx, userID, record)
	})
}

// Delete removes a record.
func (s *Selector) Delete(ctx context.Context, userID string) error {
	return s.do(ctx, "delete", func(ctx context.Context, b driven.Backend) error {
		return b.Delete(ctx, userID)
	})
}

// Exists reports whether a record is stored.
func (s *Selector) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.do(ctx, "exists", func(ctx context.Context, b driven.Backend) error {
		var err error
		exists, err = b.Exists(ctx, userID)
		return err
	})
	return exists, err
}

// GetState retrieves the app-state snapshot for a user.
func (s *Selector) GetState(ctx context.Context, userID string) (domain.AppState, error) {
	var state domain.AppState
	err := s.do(ctx, "get state", func(ctx context.Context, b driven.Backend) error {
		var err error
		state, err = b.GetState(ctx, userID)
		return err
	})
	return state, err
}

// SetState stores the app-state snapshot for a user.
func (s *Selector) SetState(ctx context.Context, userID string, state domain.AppState) error {
	return s.do(ctx, "set state", func(ctx context.Context, b driven.Backend) error {
		return b.SetState(ctx, userID, state)
	})
}
