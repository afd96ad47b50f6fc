package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/habitsync/internal/core/domain"
	"github.com/custodia-labs/habitsync/internal/core/ports/driven"
	"github.com/custodia-labs/habitsync/internal/core/ports/driving"
)

// Ensure LogService implements the interface.
var _ driving.LogService = (*LogService)(nil)

// LogService mirrors habit log entries into the user's spreadsheet.
type LogService struct {
	resolver driving.CredentialResolver
	sheets   driven.SpreadsheetGateway
	now      func() time.Time
}

// NewLogService creates a new log service.
func NewLogService(resolver driving.CredentialResolver, sheets driven.SpreadsheetGateway) *LogService {
	return &LogService{
		resolver: resolver,
		sheets:   sheets,
		now:      time.Now,
	}
}

// Append validates one entry, fills in defaults and adds it as a new row.
func (s *LogService) Append(ctx context.Context, userID string, entry domain.LogEntry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}

	res, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return err
	}

	entry.Habit = strings.TrimSpace(entry.Habit)
	entry = s.withDefaults(entry)

	if err := s.sheets.Append(ctx, res.Credential, res.SpreadsheetID, []domain.LogEntry{entry}); err != nil {
		return fmt.Errorf("appending log: %w", err)
	}
	return nil
}

// List returns the logged entries, skipping rows without a date or habit.
func (s *LogService) List(ctx context.Context, userID string) ([]domain.LogEntry, error) {
	res, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.sheets.List(ctx, res.Credential, res.SpreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("reading logs: %w", err)
	}

	logs := make([]domain.LogEntry, 0, len(rows))
	for _, row := range rows {
		if row.IsComplete() {
			logs = append(logs, row)
		}
	}
	return logs, nil
}

// Sync replaces every logged row with entries and returns how many were
// written. Entries are written as given apart from defaults.
func (s *LogService) Sync(ctx context.Context, userID string, entries []domain.LogEntry) (int, error) {
	if len(entries) == 0 {
		return 0, fmt.Errorf("%w: logs array must not be empty - nothing to sync", domain.ErrInvalidInput)
	}

	res, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return 0, err
	}

	rows := make([]domain.LogEntry, len(entries))
	for i, e := range entries {
		rows[i] = s.withDefaults(e)
	}

	if err := s.sheets.Replace(ctx, res.Credential, res.SpreadsheetID, rows); err != nil {
		return 0, fmt.Errorf("syncing logs: %w", err)
	}
	return len(rows), nil
}

func (s *LogService) withDefaults(e domain.LogEntry) domain.LogEntry {
	if e.Status == "" {
		e.Status = domain.DefaultLogStatus
	}
	if e.Timestamp == "" {
		e.Timestamp = s.now().UTC().Format(isoMillis)
	}
	return e
}

func validateEntry(e domain.LogEntry) error {
	if strings.TrimSpace(e.Habit) == "" {
		return fmt.Errorf("%w: habit name is required", domain.ErrInvalidInput)
	}
	if !domain.IsValidLogDate(e.Date) {
		return fmt.Errorf("%w: date is required and must be in YYYY-MM-DD format", domain.ErrInvalidInput)
	}
	return nil
}
