package services

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"github.com/custodia-labs/habitsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/habitsync/internal/core/domain"
)

// mockAuthProvider is a testify mock of driven.AuthProvider.
type mockAuthProvider struct {
	mock.Mock
}

func (m *mockAuthProvider) AuthCodeURL(userID, loginHint string) (string, error) {
	args := m.Called(userID, loginHint)
	return args.String(0), args.Error(1)
}

func (m *mockAuthProvider) Exchange(ctx context.Context, code string) (domain.Tokens, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Tokens), args.Error(1)
}

func (m *mockAuthProvider) Refresh(ctx context.Context, refreshToken string) (domain.Tokens, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(domain.Tokens), args.Error(1)
}

// mockGateway is a testify mock of driven.SpreadsheetGateway.
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Create(ctx context.Context, cred domain.Credential) (string, error) {
	args := m.Called(ctx, cred)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) Append(ctx context.Context, cred domain.Credential, spreadsheetID string, entries []domain.LogEntry) error {
	args := m.Called(ctx, cred, spreadsheetID, entries)
	return args.Error(0)
}

func (m *mockGateway) List(ctx context.Context, cred domain.Credential, spreadsheetID string) ([]domain.LogEntry, error) {
	args := m.Called(ctx, cred, spreadsheetID)
	entries, _ := args.Get(0).([]domain.LogEntry)
	return entries, args.Error(1)
}

func (m *mockGateway) Replace(ctx context.Context, cred domain.Credential, spreadsheetID string, entries []domain.LogEntry) error {
	args := m.Called(ctx, cred, spreadsheetID, entries)
	return args.Error(0)
}

// recordingStore wraps the memory store, counting calls and optionally failing.
type recordingStore struct {
	*memory.Store
	gets    int32
	sets    int32
	getErr  error
	setErr  error
	failAll error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Store: memory.NewStore()}
}

func (s *recordingStore) Get(ctx context.Context, userID string) (*domain.Record, error) {
	atomic.AddInt32(&s.gets, 1)
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.failAll != nil {
		return nil, s.failAll
	}
	return s.Store.Get(ctx, userID)
}

func (s *recordingStore) Set(ctx context.Context, userID string, record domain.Record) error {
	atomic.AddInt32(&s.sets, 1)
	if s.setErr != nil {
		return s.setErr
	}
	if s.failAll != nil {
		return s.failAll
	}
	return s.Store.Set(ctx, userID, record)
}

func (s *recordingStore) Exists(ctx context.Context, userID string) (bool, error) {
	if s.failAll != nil {
		return false, s.failAll
	}
	return s.Store.Exists(ctx, userID)
}

func (s *recordingStore) GetState(ctx context.Context, userID string) (domain.AppState, error) {
	if s.failAll != nil {
		return nil, s.failAll
	}
	return s.Store.GetState(ctx, userID)
}

func (s *recordingStore) SetState(ctx context.Context, userID string, state domain.AppState) error {
	if s.failAll != nil {
		return s.failAll
	}
	return s.Store.SetState(ctx, userID, state)
}

func (s *recordingStore) setCount() int32 { return atomic.LoadInt32(&s.sets) }

func (s *recordingStore) getCount() int32 { return atomic.LoadInt32(&s.gets) }

var errStoreDown = errors.New("connection refused")

// stubResolver returns a fixed resolution or error.
type stubResolver struct {
	res *domain.Resolution
	err error
}

func (s stubResolver) Resolve(context.Context, string) (*domain.Resolution, error) {
	return s.res, s.err
}
