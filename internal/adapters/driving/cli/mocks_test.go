package cli

import (
	"context"
	"testing"

	"github.com/custodia-labs/habitsync/internal/core/domain"
)

type mockConnectionService struct {
	authURL      string
	authErr      error
	gotHint      string
	status       domain.ConnectionStatus
	statusErr error
	wasConnected bool
	err          error
	gotUserID    string
}

func (m *mockConnectionService) AuthorizeURL(userID, loginHint string) (string, error) {
	m.gotUserID, m.gotHint = userID, loginHint
	return m.authURL, m.authErr
}

func (m *mockConnectionService) CompleteAuthorization(_ context.Context, _, _ string) (string, error) {
	return "", nil
}

func (m *mockConnectionService) Status(_ context.Context, userID string) (domain.ConnectionStatus, error) {
	m.gotUserID = userID
	return m.status, m.statusErr
}

func (m *mockConnectionService) Disconnect(_ context.Context, userID string) (bool, error) {
	m.gotUserID = userID
	return m.wasConnected, m.err
}

type mockLogService struct{}

func (mockLogService) Append(context.Context, string, domain.LogEntry) error { return nil }

func (mockLogService) List(context.Context, string) ([]domain.LogEntry, error) { return nil, nil }

func (mockLogService) Sync(_ context.Context, _ string, e []domain.LogEntry) (int, error) {
	return len(e), nil
}

type mockStateService struct{}

func (mockStateService) Get(context.Context, string) (domain.AppState, error) { return nil, nil }

func (mockStateService) Set(context.Context, string, domain.AppState) error { return nil }

// setupTestServices installs mock services and isolates config loading
// from the developer's home directory.
func setupTestServices(t *testing.T) *mockConnectionService {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	conn := &mockConnectionService{}
	oldConn, oldLogs, oldState := connectionService, logService, stateService
	connectionService, logService, stateService = conn, mockLogService{}, mockStateService{}
	t.Cleanup(func() {
		connectionService, logService, stateService = oldConn, oldLogs, oldState
	})
	return conn
}
