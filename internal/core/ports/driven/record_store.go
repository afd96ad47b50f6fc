package driven

import (
	"context"

	"github.com/custodia-labs/habitsync/internal/core/domain"
)

// RecordStore persists one credential record per user ID.
// Set overwrites the whole record; callers read-modify-write.
type RecordStore interface {
	// Get retrieves the record for a user.
	// Returns nil, nil if the user has no record.
	Get(ctx context.Context, userID string) (*domain.Record, error)

	// Set stores the record, replacing any previous one.
	Set(ctx context.Context, userID string, record domain.Record) error

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, userID string) error

	// Exists reports whether a record is stored for the user.
	Exists(ctx context.Context, userID string) (bool, error)
}

// StateStore persists the frontend's habit state snapshot per user ID.
type StateStore interface {
	// GetState returns nil, nil when no snapshot is stored.
	GetState(ctx context.Context, userID string) (domain.AppState, error)

	// SetState replaces the stored snapshot.
	SetState(ctx context.Context, userID string, state domain.AppState) error
}

// Backend is a store backend serving both records and state snapshots.
type Backend interface {
	RecordStore
	StateStore

	// Name identifies the backend in logs (memory, redis, sqlite).
	Name() string

	// Close releases connections held by the backend.
	Close() error
}
