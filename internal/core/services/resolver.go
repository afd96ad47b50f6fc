package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/habitsync/internal/core/domain"
	"github.com/custodia-labs/habitsync/internal/core/ports/driven"
	"github.com/custodia-labs/habitsync/internal/core/ports/driving"
	"github.com/custodia-labs/habitsync/internal/logger"
)

// DefaultRefreshTimeout bounds one call to the token endpoint.
const DefaultRefreshTimeout = 10 * time.Second

// Ensure Resolver implements the interface.
var _ driving.CredentialResolver = (*Resolver)(nil)

// Resolver turns a user ID into a currently valid bearer credential.
//
// A token within domain.RefreshSkew of its expiry is refreshed once and the
// updated record is written back. Concurrent resolutions for the same user
// share a single refresh and a single write.
type Resolver struct {
	store          driven.RecordStore
	auth           driven.AuthProvider
	now            func() time.Time
	refreshTimeout time.Duration
	refreshes      singleflight.Group
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithClock sets the time source used for expiry checks.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithRefreshTimeout bounds each token refresh.
func WithRefreshTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.refreshTimeout = d
		}
	}
}

// NewResolver creates a resolver over a record store and an auth provider.
func NewResolver(store driven.RecordStore, auth driven.AuthProvider, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:          store,
		auth:           auth,
		now:            time.Now,
		refreshTimeout: DefaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve loads the user's record and returns a usable credential and the
// user's spreadsheet ID.
//
// Errors: NotConnected when no record exists, CorruptState when the record
// has no tokens, ReauthRequired when a needed refresh fails, and
// BackendUnavailable when the store cannot be read or written.
func (r *Resolver) Resolve(ctx context.Context, userID string) (*domain.Resolution, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidInput
	}

	record, err := r.store.Get(ctx, userID)
	if err != nil {
		return nil, storeError("get", err)
	}
	if record == nil {
		return nil, domain.NewNotConnectedError()
	}
	if record.Tokens == nil {
		return nil, domain.NewCorruptStateError()
	}

	if !record.Tokens.NeedsRefresh(r.now()) {
		return resolution(*record), nil
	}

	refreshed, err := r.refresh(ctx, userID, *record)
	if err != nil {
		return nil, err
	}
	return resolution(refreshed), nil
}

// refresh exchanges the refresh token and persists the updated record.
// The store is only written after a successful refresh.
func (r *Resolver) refresh(ctx context.Context, userID string, record domain.Record) (domain.Record, error) {
	v, err, shared := r.refreshes.Do(userID, func() (any, error) {
		// The shared refresh must not die with whichever caller started it.
		ctx := context.WithoutCancel(ctx)

		refreshToken := record.Tokens.RefreshTokenValue()
		if refreshToken == "" {
			return nil, domain.NewReauthRequiredError(errors.New("no refresh token stored"))
		}

		logger.Debug("refreshing access token", "user_id", userID)

		refreshCtx, cancel := context.WithTimeout(ctx, r.refreshTimeout)
		issued, err := r.auth.Refresh(refreshCtx, refreshToken)
		cancel()
		if err != nil {
			if errors.Is(err, domain.ErrConfiguration) {
				return nil, err
			}
			logger.Warn("token refresh failed", "user_id", userID, "error", err)
			return nil, domain.NewReauthRequiredError(err)
		}

		updated := record.WithTokens(issued)
		if err := r.store.Set(ctx, userID, updated); err != nil {
			return nil, storeError("set", err)
		}
		return updated, nil
	})
	if err != nil {
		return domain.Record{}, err
	}
	if shared {
		logger.Debug("joined in-flight token refresh", "user_id", userID)
	}
	return v.(domain.Record), nil
}

func resolution(record domain.Record) *domain.Resolution {
	return &domain.Resolution{
		Credential:    domain.CredentialFrom(record.Tokens),
		SpreadsheetID: record.SpreadsheetID,
	}
}

// storeError maps a store failure onto the resolver's error taxonomy.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrCorruptState):
		return domain.NewCorruptStateError()
	case errors.Is(err, domain.ErrBackendUnavailable), errors.Is(err, domain.ErrConfiguration):
		return err
	default:
		return domain.NewBackendUnavailableError(op, err)
	}
}
