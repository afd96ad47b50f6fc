package mcp

import (
	"github.com/custodia-labs/habitsync/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls into.
type Ports struct {
	// Connection reports whether a user has connected a spreadsheet.
	Connection driving.ConnectionService

	// Logs reads and appends habit log entries.
	Logs driving.LogService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Connection == nil {
		return ErrMissingConnectionService
	}
	if p.Logs == nil {
		return ErrMissingLogService
	}
	return nil
}
