// Package mcp exposes habit logging to AI assistants over the Model Context
// Protocol. Tools log and read habits in a connected user's spreadsheet;
// resources expose the same data for reading.
package mcp

import "errors"

// Port validation errors.
var (
	ErrMissingConnectionService = errors.New("mcp: connection service is required")
	ErrMissingLogService        = errors.New("mcp: log service is required")
)
