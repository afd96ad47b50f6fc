package httpapi

import (
	"errors"

	"github.com/custodia-labs/habitsync/internal/core/ports/driving"
)

// Port validation errors.
var (
	ErrMissingConnectionService = errors.New("connection service is required")
	ErrMissingLogService        = errors.New("log service is required")
	ErrMissingStateService      = errors.New("state service is required")
)

// Ports holds the driving ports the API calls into.
type Ports struct {
	Connection driving.ConnectionService
	Logs       driving.LogService
	State      driving.StateService
}

// Validate checks that every port is set.
func (p *Ports) Validate() error {
	switch {
	case p.Connection == nil:
		return ErrMissingConnectionService
	case p.Logs == nil:
		return ErrMissingLogService
	case p.State == nil:
		return ErrMissingStateService
	}
	return nil
}
