package mcp

import (
	"context"

	"github.com/custodia-labs/habitsync/internal/core/domain"
)

// mockConnectionService is a mock implementation of driving.ConnectionService.
type mockConnectionService struct {
	status    domain.ConnectionStatus
	statusErr error
	gotUserID string
}

func (m *mockConnectionService) AuthorizeURL(_, _ string) (string, error) {
	return "", nil
}

func (m *mockConnectionService) CompleteAuthorization(_ context.Context, _, _ string) (string, error) {
	return "", nil
}

func (m *mockConnectionService) Status(_ context.Context, userID string) (domain.ConnectionStatus, error) {
	m.gotUserID = userID
	return m.status, m.statusErr
}

func (m *mockConnectionService) Disconnect(_ context.Context, _ string) (bool, error) {
	return false, nil
}

// mockLogService is a mock implementation of driving.LogService.
type mockLogService struct {
	logs []domain.LogEntry
	err  error

	gotUserID string
	gotEntry  domain.LogEntry
}

func (m *mockLogService) Append(_ context.Context, userID string, entry domain.LogEntry) error {
	m.gotUserID, m.gotEntry = userID, entry
	return m.err
}

func (m *mockLogService) List(_ context.Context, userID string) ([]domain.LogEntry, error) {
	m.gotUserID = userID
	return m.logs, m.err
}

func (m *mockLogService) Sync(_ context.Context, _ string, entries []domain.LogEntry) (int, error) {
	return len(entries), m.err
}
