package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/habitsync/internal/core/domain"
	"github.com/custodia-labs/habitsync/internal/core/ports/driven"
	"github.com/custodia-labs/habitsync/internal/core/ports/driving"
	"github.com/custodia-labs/habitsync/internal/logger"
)

// isoMillis matches JavaScript's Date.prototype.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Ensure ConnectionService implements the interface.
var _ driving.ConnectionService = (*ConnectionService)(nil)

// ConnectionService connects and disconnects a user's Google Sheet.
type ConnectionService struct {
	store  driven.RecordStore
	auth   driven.AuthProvider
	sheets driven.SpreadsheetGateway
	now    func() time.Time
}

// NewConnectionService creates a new connection service.
func NewConnectionService(
	store driven.RecordStore,
	auth driven.AuthProvider,
	sheets driven.SpreadsheetGateway,
) *ConnectionService {
	return &ConnectionService{
		store:  store,
		auth:   auth,
		sheets: sheets,
		now:    time.Now,
	}
}

// AuthorizeURL returns the Google consent URL for a user.
func (s *ConnectionService) AuthorizeURL(userID, loginHint string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: missing user identity for Google Sheets connection", domain.ErrInvalidInput)
	}
	return s.auth.AuthCodeURL(userID, strings.TrimSpace(loginHint))
}

// CompleteAuthorization exchanges the callback code, makes sure the user has
// a log spreadsheet and stores the record. It returns the sheet URL.
//
// Reconnecting keeps the existing spreadsheet, connection time and, if the
// new grant carries none, the stored refresh token.
func (s *ConnectionService) CompleteAuthorization(ctx context.Context, code, userID string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("%w: no authorisation code received from Google", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: missing state parameter, please try connecting again", domain.ErrInvalidInput)
	}

	issued, err := s.auth.Exchange(ctx, code)
	if err != nil {
		return "", domain.NewTokenExchangeError(err)
	}

	// An unreadable record must not be mistaken for a first connection:
	// overwriting it would lose the spreadsheet and refresh token.
	existing, err := s.store.Get(ctx, userID)
	if err != nil {
		return "", storeError("get", err)
	}

	var record domain.Record
	if existing != nil {
		record = existing.WithTokens(issued)
	} else {
		record = domain.Record{Tokens: &issued, ConnectedAt: s.now().UTC()}
	}
	if record.ConnectedAt.IsZero() {
		record.ConnectedAt = s.now().UTC()
	}

	if record.SpreadsheetID == "" {
		id, err := s.sheets.Create(ctx, domain.CredentialFrom(record.Tokens))
		if err != nil {
			return "", domain.NewSpreadsheetSetupError(err)
		}
		record.SpreadsheetID = id
		logger.Info("created log spreadsheet", "user_id", userID, "spreadsheet_id", id)
	}
	record.SheetURL = domain.SheetURLFor(record.SpreadsheetID)

	if err := s.store.Set(ctx, userID, record); err != nil {
		return "", storeError("set", err)
	}

	return record.SheetURL, nil
}

// Status reports the user's connection. A store failure is returned rather
// than reported as not connected.
func (s *ConnectionService) Status(ctx context.Context, userID string) (domain.ConnectionStatus, error) {
	record, err := s.store.Get(ctx, userID)
	if err != nil {
		logger.Error("store read failed during status check", "user_id", userID, "error", err)
		return domain.ConnectionStatus{}, storeError("get", err)
	}
	if record == nil {
		return domain.ConnectionStatus{}, nil
	}

	status := domain.ConnectionStatus{
		Connected:     true,
		SheetURL:      record.SheetURL,
		SpreadsheetID: record.SpreadsheetID,
	}
	if !record.ConnectedAt.IsZero() {
		status.ConnectedAt = record.ConnectedAt.UTC().Format(isoMillis)
	}
	return status, nil
}

// Disconnect deletes the user's record and reports whether one existed.
func (s *ConnectionService) Disconnect(ctx context.Context, userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, domain.ErrInvalidInput
	}

	existed, err := s.store.Exists(ctx, userID)
	if err != nil {
		return false, storeError("exists", err)
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		return false, storeError("delete", err)
	}

	if existed {
		logger.Info("disconnected Google Sheets", "user_id", userID)
	}
	return existed, nil
}
