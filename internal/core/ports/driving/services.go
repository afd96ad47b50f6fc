package driving

import (
	"context"

	"github.com/custodia-labs/habitsync/internal/core/domain"
)

// CredentialResolver returns a currently valid credential for a user,
// refreshing it first when needed.
type CredentialResolver interface {
	Resolve(ctx context.Context, userID string) (*domain.Resolution, error)
}

// ConnectionService manages the Google Sheets connection lifecycle.
type ConnectionService interface {
	// AuthorizeURL returns the consent URL for a user.
	AuthorizeURL(userID, loginHint string) (string, error)

	// CompleteAuthorization exchanges the callback code, ensures the user
	// has a spreadsheet and stores the record. Returns the sheet URL.
	CompleteAuthorization(ctx context.Context, code, userID string) (string, error)

	// Status reports whether the user is connected. A store failure is
	// returned as an error, never as "not connected".
	Status(ctx context.Context, userID string) (domain.ConnectionStatus, error)

	// Disconnect removes the user's record and reports whether one existed.
	Disconnect(ctx context.Context, userID string) (bool, error)
}

// LogService mirrors habit logs into the user's spreadsheet.
type LogService interface {
	Append(ctx context.Context, userID string, entry domain.LogEntry) error
	List(ctx context.Context, userID string) ([]domain.LogEntry, error)
	Sync(ctx context.Context, userID string, entries []domain.LogEntry) (int, error)
}

// StateService stores the frontend's habit state snapshot.
type StateService interface {
	Get(ctx context.Context, userID string) (domain.AppState, error)
	Set(ctx context.Context, userID string, state domain.AppState) error
}
