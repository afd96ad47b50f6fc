package cli

import (
	"github.com/custodia-labs/habitsync/internal/adapters/driven/oauth"
	"github.com/custodia-labs/habitsync/internal/adapters/driven/sheets"
	"github.com/custodia-labs/habitsync/internal/adapters/driven/storage"
	"github.com/custodia-labs/habitsync/internal/config"
	"github.com/custodia-labs/habitsync/internal/core/ports/driven"
	"github.com/custodia-labs/habitsync/internal/core/ports/driving"
	"github.com/custodia-labs/habitsync/internal/core/services"
	"github.com/custodia-labs/habitsync/internal/logger"
)

// Services used by commands. Tests replace them before executing.
var (
	connectionService driving.ConnectionService
	logService        driving.LogService
	stateService      driving.StateService
	credentialStore   *storage.Selector
)

// ensureServices wires the services from cfg unless they are already set.
func ensureServices() {
	if connectionService != nil && logService != nil && stateService != nil {
		return
	}

	store := storage.NewSelector(storage.Config{
		Backend:    cfg.Store.Backend,
		RedisURL:   cfg.Store.RedisURL,
		RedisToken: cfg.Store.RedisToken,
		SQLiteDir:  cfg.Store.SQLiteDir,
		Strict:     cfg.Store.Strict,
		Timeout:    cfg.Store.Timeout,
	})

	gateway := sheets.NewGateway(sheets.NewRateLimiter(cfg.Sheets.RequestsPerSecond, sheets.DefaultBurstSize))
	auth := newAuthProvider(cfg.Google)
	resolver := services.NewResolver(store, auth, services.WithRefreshTimeout(cfg.OAuth.RefreshTimeout))

	connectionService = services.NewConnectionService(store, auth, gateway)
	logService = services.NewLogService(resolver, gateway)
	stateService = services.NewStateService(store)
	credentialStore = store
}

// newAuthProvider builds the Google client. Missing settings do not stop
// the process; every OAuth call reports them instead.
func newAuthProvider(g config.GoogleConfig) driven.AuthProvider {
	client, err := oauth.NewGoogleClient(oauth.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		RedirectURI:  g.RedirectURI,
	})
	if err != nil {
		logger.Warn("google oauth is not configured", "error", err)
		return oauth.Unconfigured{Err: err}
	}
	return client
}

// closeServices releases the credential store.
func closeServices() {
	if credentialStore == nil {
		return
	}
	if err := credentialStore.Close(); err != nil {
		logger.Warn("closing credential store failed", "error", err)
	}
	credentialStore = nil
}
