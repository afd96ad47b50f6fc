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

// Ensure StateService implements the interface.
var _ driving.StateService = (*StateService)(nil)

// StateService stores the frontend's habit state snapshot per user.
type StateService struct {
	store driven.StateStore
	now   func() time.Time
}

// NewStateService creates a new state service.
func NewStateService(store driven.StateStore) *StateService {
	return &StateService{store: store, now: time.Now}
}

// Get returns the stored snapshot, or nil if there is none.
func (s *StateService) Get(ctx context.Context, userID string) (domain.AppState, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidInput
	}
	state, err := s.store.GetState(ctx, userID)
	if err != nil {
		return nil, storeError("get state", err)
	}
	return state, nil
}

// Set stores a copy of state stamped with updatedAt in epoch milliseconds.
func (s *StateService) Set(ctx context.Context, userID string, state domain.AppState) error {
	if strings.TrimSpace(userID) == "" {
		return domain.ErrInvalidInput
	}
	if state == nil {
		return fmt.Errorf("%w: state object is required", domain.ErrInvalidInput)
	}

	stamped := make(domain.AppState, len(state)+1)
	for k, v := range state {
		stamped[k] = v
	}
	stamped["updatedAt"] = s.now().UnixMilli()

	if err := s.store.SetState(ctx, userID, stamped); err != nil {
		return storeError("set state", err)
	}
	return nil
}
