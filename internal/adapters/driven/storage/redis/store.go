// Package redis provides a Redis-backed store backend.
//
// Values are JSON documents under the keys at_user:<userId> and
// at_state:<userId>, the same layout the Upstash REST client writes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/habitsync/internal/core/domain"
	"github.com/custodia-labs/habitsync/internal/core/ports/driven"
)

// Key prefixes.
const (
	UserKeyPrefix  = "at_user:"
	StateKeyPrefix = "at_state:"
)

// Ensure Store implements the interface.
var _ driven.Backend = (*Store)(nil)

// Store is a Redis implementation of driven.Backend.
type Store struct {
	client *goredis.Client
}

// Options configures the Redis connection.
type Options struct {
	// URL is a redis:// or rediss:// URL.
	URL string
	// Token, when set, replaces the password in URL.
	Token string
}

// New creates a Redis store. It does not contact the server; call Ping to
// check reachability.
func New(opts Options) (*Store, error) {
	clientOpts, err := clientOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Store{client: goredis.NewClient(clientOpts)}, nil
}

// clientOptions turns the configured URL into go-redis options.
func clientOptions(opts Options) (*goredis.Options, error) {
	if opts.URL == "" {
		return nil, errors.New("redis url is empty")
	}

	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	switch u.Scheme {
	case "redis", "rediss":
		clientOpts, err := goredis.ParseURL(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		if opts.Token != "" {
			clientOpts.Password = opts.Token
		}
		return clientOpts, nil
	default:
		return nil, fmt.Errorf("%w: unsupported redis url scheme %q, use redis:// or rediss://",
			domain.ErrConfiguration, u.Scheme)
	}
}

// Name returns the backend name.
func (s *Store) Name() string {
	return "redis"
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis PING: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Get retrieves the record for a user.
func (s *Store) Get(ctx context.Context, userID string) (*domain.Record, error) {
	data, err := s.client.Get(ctx, UserKeyPrefix+userID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET: %w", err)
	}

	var record domain.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decoding record: %w: %w", domain.ErrCorruptState, err)
	}
	return &record, nil
}

// Set stores or replaces a record.
func (s *Store) Set(ctx context.Context, userID string, record domain.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	if err := s.client.Set(ctx, UserKeyPrefix+userID, data, 0).Err(); err != nil {
		return fmt.Errorf("redis SET: %w", err)
	}
	return nil
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, UserKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis DEL: %w", err)
	}
	return nil
}

// Exists reports whether a record is stored.
func (s *Store) Exists(ctx context.Context, userID string) (bool, error) {
	count, err := s.client.Exists(ctx, UserKeyPrefix+userID).Result()
	if err != nil {
		return false, fmt.Errorf("redis EXISTS: %w", err)
	}
	return count == 1, nil
}

// GetState retrieves the app-state snapshot for a user.
func (s *Store) GetState(ctx context.Context, userID string) (domain.AppState, error) {
	data, err := s.client.Get(ctx, StateKeyPrefix+userID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET (state): %w", err)
	}

	var state domain.AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	return state, nil
}

// SetState stores the app-state snapshot for a user.
func (s *Store) SetState(ctx context.Context, userID string, state domain.AppState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := s.client.Set(ctx, StateKeyPrefix+userID, data, 0).Err(); err != nil {
		return fmt.Errorf("redis SET (state): %w", err)
	}
	return nil
}
