package httpapi

import (
	"context"

	"github.com/custodia-labs/habitsync/internal/core/domain"
)

// mockConnectionService is a mock implementation of driving.ConnectionService.
type mockConnectionService struct {
	authURL      string
	authErr      error
	sheetURL     string
	completeErr  error
	status       domain.ConnectionStatus
	statusErr error
	wasConnected bool
	err          error

	gotUserID string
	gotHint   string
	gotCode   string
}

func (m *mockConnectionService) AuthorizeURL(userID, loginHint string) (string, error) {
	m.gotUserID, m.gotHint = userID, loginHint
	return m.authURL, m.authErr
}

func (m *mockConnectionService) CompleteAuthorization(_ context.Context, code, userID string) (string, error) {
	m.gotCode, m.gotUserID = code, userID
	return m.sheetURL, m.completeErr
}

func (m *mockConnectionService) Status(_ context.Context, userID string) (domain.ConnectionStatus, error) {
	m.gotUserID = userID
	return m.status, m.statusErr
}

func (m *mockConnectionService) Disconnect(_ context.Context, userID string) (bool, error) {
	m.gotUserID = userID
	return m.wasConnected, m.err
}

// mockLogService is a mock implementation of driving.LogService.
type mockLogService struct {
	logs  []domain.LogEntry
	count int
	err   error

	gotUserID  string
	gotEntry   domain.LogEntry
	gotEntries []domain.LogEntry
}

func (m *mockLogService) Append(_ context.Context, userID string, entry domain.LogEntry) error {
	m.gotUserID, m.gotEntry = userID, entry
	return m.err
}

func (m *mockLogService) List(_ context.Context, userID string) ([]domain.LogEntry, error) {
	m.gotUserID = userID
	return m.logs, m.err
}

func (m *mockLogService) Sync(_ context.Context, userID string, entries []domain.LogEntry) (int, error) {
	m.gotUserID, m.gotEntries = userID, entries
	return m.count, m.err
}

// mockStateService is a mock implementation of driving.StateService.
type mockStateService struct {
	state domain.AppState
	err   error

	gotUserID string
	gotState  domain.AppState
}

func (m *mockStateService) Get(_ context.Context, userID string) (domain.AppState, error) {
	m.gotUserID = userID
	return m.state, m.err
}

func (m *mockStateService) Set(_ context.Context, userID string, state domain.AppState) error {
	m.gotUserID, m.gotState = userID, state
	return m.err
}
