package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/habitsync/internal/core/domain"
)

var fixedNow = time.UnixMilli(1_700_000_000_000)

func clock() time.Time { return fixedNow }

func msPtr(ms int64) *int64 { return &ms }

func storedRecord(access string, refresh *string, expiry *int64) domain.Record {
	return domain.Record{
		Tokens: &domain.Tokens{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiryDate:   expiry,
		},
		SpreadsheetID: "S1",
		SheetURL:      domain.SheetURLFor("S1"),
		ConnectedAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func setupResolver(t *testing.T) (*Resolver, *recordingStore, *mockAuthProvider) {
	t.Helper()
	store := newRecordingStore()
	auth := &mockAuthProvider{}
	return NewResolver(store, auth, WithClock(clock)), store, auth
}

func TestNewResolver(t *testing.T) {
	r := NewResolver(newRecordingStore(), &mockAuthProvider{})

	require.NotNil(t, r)
	assert.Equal(t, DefaultRefreshTimeout, r.refreshTimeout)
	assert.NotNil(t, r.now)

	r = NewResolver(newRecordingStore(), &mockAuthProvider{}, WithRefreshTimeout(time.Second))
	assert.Equal(t, time.Second, r.refreshTimeout)
}

func TestResolver_EmptyUserID(t *testing.T) {
	r, _, _ := setupResolver(t)

	_, err := r.Resolve(context.Background(), "  ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResolver_NoRecord_NotConnected(t *testing.T) {
	r, _, auth := setupResolver(t)

	res, err := r.Resolve(context.Background(), "nobody")

	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrNotConnected)
	assert.Contains(t, err.Error(), "Settings")
	auth.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestResolver_RecordWithoutTokens_CorruptState(t *testing.T) {
	r, store, auth := setupResolver(t)
	require.NoError(t, store.Set(context.Background(), "u1", domain.Record{SpreadsheetID: "S1"}))

	_, err := r.Resolve(context.Background(), "u1")

	assert.ErrorIs(t, err, domain.ErrCorruptState)
	auth.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestResolver_UndecodableRecord_CorruptState(t *testing.T) {
	r, store, _ := setupResolver(t)
	store.getErr = fmt.Errorf("decoding record: %w: %w", domain.ErrCorruptState, errors.New("unexpected EOF"))

	_, err := r.Resolve(context.Background(), "u1")

	assert.ErrorIs(t, err, domain.ErrCorruptState)
}

func TestResolver_StoreReadFailure_BackendUnavailable(t *testing.T) {
	r, store, auth := setupResolver(t)
	store.getErr = errStoreDown

	_, err := r.Resolve(context.Background(), "u1")

	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.NotErrorIs(t, err, domain.ErrNotConnected)
	assert.ErrorIs(t, err, errStoreDown)
	auth.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestResolver_StoreReadFailure_AlreadyClassified(t *testing.T) {
	r, store, _ := setupResolver(t)
	classified := domain.NewBackendUnavailableError("get", errStoreDown)
	store.getErr = classified

	_, err := r.Resolve(context.Background(), "u1")

	assert.Same(t, classified, err)
}

func TestResolver_ValidToken_ReturnedUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		expiry *int64
	}{
		{"far future", msPtr(fixedNow.UnixMilli() + 3_600_000)},
		{"61 seconds left", msPtr(fixedNow.UnixMilli() + 61_000)},
		{"no expiry", nil},
		{"zero expiry", msPtr(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store, auth := setupResolver(t)
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, "u1", storedRecord("A", domain.StringPtr("R"), tt.expiry)))
			setsBefore := store.setCount()

			res, err := r.Resolve(ctx, "u1")

			require.NoError(t, err)
			assert.Equal(t, "A", res.Credential.AccessToken)
			assert.Equal(t, "Bearer A", res.Credential.AuthorizationHeader())
			assert.Equal(t, "S1", res.SpreadsheetID)
			assert.Equal(t, setsBefore, store.setCount())
			auth.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
		})
	}
}

func TestResolver_ExpiringToken_RefreshedOnce(t *testing.T) {
	tests := []struct {
		name   string
		expiry int64
	}{
		{"already expired", fixedNow.UnixMilli() - 1000},
		{"exactly at skew", fixedNow.UnixMilli() + 60_000},
		{"inside skew", fixedNow.UnixMilli() + 30_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store, auth := setupResolver(t)
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, "u1", storedRecord("A", domain.StringPtr("R"), msPtr(tt.expiry))))

			newExpiry := fixedNow.UnixMilli() + 3_600_000
			auth.On("Refresh", mock.Anything, "R").
				Return(domain.Tokens{AccessToken: "A2", ExpiryDate: &newExpiry}, nil).Once()

			res, err := r.Resolve(ctx, "u1")

			require.NoError(t, err)
			assert.Equal(t, "A2", res.Credential.AccessToken)
			assert.Equal(t, time.UnixMilli(newExpiry), res.Credential.Expiry)
			auth.AssertNumberOfCalls(t, "Refresh", 1)
		})
	}
}

// A stored record with an expired token and refresh token R is refreshed;
// the provider omits a refresh token, so R is kept.
func TestResolver_RefreshPreservesRefreshToken(t *testing.T) {
	r, store, auth := setupResolver(t)
	ctx := context.Background()
	original := storedRecord("A", domain.StringPtr("R"), msPtr(fixedNow.UnixMilli()-1000))
	require.NoError(t, store.Set(ctx, "user", original))

	newExpiry := fixedNow.UnixMilli() + 3_600_000
	auth.On("Refresh", mock.Anything, "R").
		Return(domain.Tokens{AccessToken: "A2", ExpiryDate: &newExpiry}, nil).Once()

	_, err := r.Resolve(ctx, "user")
	require.NoError(t, err)

	stored, err := store.Get(ctx, "user")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "A2", stored.Tokens.AccessToken)
	assert.Equal(t, "R", stored.Tokens.RefreshTokenValue())
	assert.Equal(t, newExpiry, *stored.Tokens.ExpiryDate)
	assert.Equal(t, original.SpreadsheetID, stored.SpreadsheetID)
	assert.Equal(t, original.SheetURL, stored.SheetURL)
	assert.Equal(t, original.ConnectedAt, stored.ConnectedAt)
}

func TestResolver_RefreshStoresRotatedRefreshToken(t *testing.T) {
	r, store, auth := setupResolver(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "u1", storedRecord("A", domain.StringPtr("R"), msPtr(fixedNow.UnixMilli()))))

	auth.On("Refresh", mock.Anything, "R").
		Return(domain.Tokens{AccessToken: "A2", RefreshToken: domain.StringPtr("R2")}, nil).Once()

	_, err := r.Resolve(ctx, "u1")
	require.NoError(t, err)

	stored, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "R2", stored.Tokens.RefreshTokenValue())
}

func TestResolver_RefreshFailure_LeavesStoreUntouched(t *testing.T) {
	r, store, auth := setupResolver(t)
	ctx := context.Background()
	original := storedRecord("A", domain.StringPtr("R"), msPtr(fixedNow.UnixMilli()-1000))
	require.NoError(t, store.Set(ctx, "u1", original))
	setsBefore := store.setCount()

	auth.On("Refresh", mock.Anything, "R").
		Return(domain.Tokens{}, errors.New("invalid_grant")).Once()

	res, err := r.Resolve(ctx, "u1")

	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrReauthRequired)
	assert.Contains(t, err.Error(), "invalid_grant")
	assert.Equal(t, setsBefore, store.setCount())

	stored, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, original, *stored)
}

func TestResolver_ExpiredWithoutRefreshToken_ReauthRequired(t *testing.T) {
	r, store, auth := setupResolver(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "u1", storedRecord("A", nil, msPtr(fixedNow.UnixMilli()-1000))))

	_, err := r.Resolve(ctx, "u1")

	assert.ErrorIs(t, err, domain.ErrReauthRequired)
	auth.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestResolver_RefreshTimeout_ReauthRequired(t *testing.T) {
	store := newRecordingStore()
	auth := &mockAuthProvider{}
	r := NewResolver(store, auth, WithClock(clock), WithRefreshTimeout(20*time.Millisecond))
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "u1", storedRecord("A", domain.StringPtr("R"), msPtr(fixedNow.UnixMilli()))))

	auth.On("Refresh", mock.Anything, "R").
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(domain.Tokens{}, context.DeadlineExceeded).Once()

	_, err := r.Resolve(ctx, "u1")

	assert.ErrorIs(t, err, domain.ErrReauthRequired)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolver_PersistFailure_BackendUnavailable(t *testing.T) {
	r, store, auth := setupResolver(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "u1", storedRecord("A", domain.StringPtr("R"), msPtr(fixedNow.UnixMilli()))))
	store.setErr = errStoreDown

	auth.On("Refresh", mock.Anything, "R").
		Return(domain.Tokens{AccessToken: "A2"}, nil).Once()

	_, err := r.Resolve(ctx, "u1")

	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestResolver_ConcurrentResolutionsShareOneRefresh(t *testing.T) {
	r, store, auth := setupResolver(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "u1", storedRecord("A", domain.StringPtr("R"), msPtr(fixedNow.UnixMilli()-1000))))

	const callers = 8
	release := make(chan struct{})
	newExpiry := fixedNow.UnixMilli() + 3_600_000
	auth.On("Refresh", mock.Anything, "R").
		Run(func(mock.Arguments) { <-release }).
		Return(domain.Tokens{AccessToken: "A2", ExpiryDate: &newExpiry}, nil)

	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := r.Resolve(ctx, "u1")
			errs[i] = err
			if res != nil {
				results[i] = res.Credential.AccessToken
			}
		}(i)
	}

	// Every caller has read the expired record before the refresh finishes.
	require.Eventually(t, func() bool {
		return store.getCount() >= callers
	}, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "A2", results[i])
	}
	auth.AssertNumberOfCalls(t, "Refresh", 1)
	assert.EqualValues(t, 2, store.setCount(), "initial seed plus one refresh write")
}

func TestResolver_UnconfiguredProvider_ConfigurationError(t *testing.T) {
	r, store, auth := setupResolver(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "u1", storedRecord("A", domain.StringPtr("R"), msPtr(fixedNow.UnixMilli()))))

	cfgErr := &domain.MissingConfigError{Component: "Google OAuth", Keys: []string{"GOOGLE_CLIENT_ID"}}
	auth.On("Refresh", mock.Anything, "R").Return(domain.Tokens{}, cfgErr).Once()

	_, err := r.Resolve(ctx, "u1")

	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.NotErrorIs(t, err, domain.ErrReauthRequired)
}
