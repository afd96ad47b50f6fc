// Package memory provides an in-process store backend.
// Data lives only as long as the process.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/custodia-labs/habitsync/internal/core/domain"
	"github.com/custodia-labs/habitsync/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.Backend = (*Store)(nil)

// Store is an in-memory implementation of driven.Backend.
type Store struct {
	mu      sync.RWMutex
	records map[string]domain.Record
	states  map[string][]byte
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]domain.Record),
		states:  make(map[string][]byte),
	}
}

// Name returns the backend name.
func (s *Store) Name() string {
	return "memory"
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}

// Get retrieves the record for a user.
func (s *Store) Get(_ context.Context, userID string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[userID]
	if !ok {
		return nil, nil
	}
	cp := copyRecord(record)
	return &cp, nil
}

// Set stores or replaces a record.
func (s *Store) Set(_ context.Context, userID string, record domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID] = copyRecord(record)
	return nil
}

// Delete removes a record.
func (s *Store) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, userID)
	return nil
}

// Exists reports whether a record is stored.
func (s *Store) Exists(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[userID]
	return ok, nil
}

// GetState retrieves the app-state snapshot for a user.
func (s *Store) GetState(_ context.Context, userID string) (domain.AppState, error) {
	s.mu.RLock()
	data, ok := s.states[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var state domain.AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return state, nil
}

// SetState stores the app-state snapshot for a user.
// The snapshot is kept encoded so callers cannot alias stored maps.
func (s *Store) SetState(_ context.Context, userID string, state domain.AppState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = data
	return nil
}

// copyRecord detaches the token pointers from the caller's copy.
func copyRecord(r domain.Record) domain.Record {
	if r.Tokens == nil {
		return r
	}
	tokens := *r.Tokens
	if tokens.RefreshToken != nil {
		rt := *tokens.RefreshToken
		tokens.RefreshToken = &rt
	}
	if tokens.ExpiryDate != nil {
		exp := *tokens.ExpiryDate
		tokens.ExpiryDate = &exp
	}
	r.Tokens = &tokens
	return r
}
