package driven

import (
	"context"

	"github.com/custodia-labs/habitsync/internal/core/domain"
)

// SpreadsheetGateway performs habit log operations on a user's spreadsheet
// using the supplied bearer credential.
type SpreadsheetGateway interface {
	// Create makes a new log spreadsheet with a formatted header row and
	// returns its ID.
	Create(ctx context.Context, cred domain.Credential) (string, error)

	// Append adds entries as new rows below the existing data.
	Append(ctx context.Context, cred domain.Credential, spreadsheetID string, entries []domain.LogEntry) error

	// List reads every data row below the header.
	List(ctx context.Context, cred domain.Credential, spreadsheetID string) ([]domain.LogEntry, error)

	// Replace clears all data rows and writes entries in their place.
	Replace(ctx context.Context, cred domain.Credential, spreadsheetID string, entries []domain.LogEntry) error
}
