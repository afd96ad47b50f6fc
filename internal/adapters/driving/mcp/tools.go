package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/habitsync/internal/core/domain"
)

// UserInput identifies the user a tool acts for.
type UserInput struct {
	UserID string `json:"user_id" jsonschema:"the user's ID as used by the habit app"`
}

// StatusOutput is the output schema for the connection_status tool.
type StatusOutput struct {
	Connected     bool   `json:"connected"`
	SheetURL      string `json:"sheet_url,omitempty"`
	SpreadsheetID string `json:"spreadsheet_id,omitempty"`
	ConnectedAt   string `json:"connected_at,omitempty"`
}

// AppendLogInput is the input schema for the append_log tool.
type AppendLogInput struct {
	UserID    string `json:"user_id" jsonschema:"the user's ID as used by the habit app"`
	Habit     string `json:"habit" jsonschema:"habit name"`
	Date      string `json:"date" jsonschema:"day of the action as YYYY-MM-DD"`
	Type      string `json:"type,omitempty" jsonschema:"Good or Bad"`
	Status    string `json:"status,omitempty" jsonschema:"status label (default logged)"`
	Value     string `json:"value,omitempty" jsonschema:"count or unit value"`
	Timestamp string `json:"timestamp,omitempty" jsonschema:"ISO-8601 time of the action (default now)"`
}

// AppendLogOutput is the output schema for the append_log tool.
type AppendLogOutput struct {
	Success bool `json:"success"`
}

// GetLogsOutput is the output schema for the get_logs tool.
type GetLogsOutput struct {
	Logs  []LogOutput `json:"logs"`
	Count int         `json:"count"`
}

// LogOutput is one spreadsheet row.
type LogOutput struct {
	Date      string `json:"date"`
	Habit     string `json:"habit"`
	Type      string `json:"type,omitempty"`
	Status    string `json:"status,omitempty"`
	Value     string `json:"value,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "connection_status",
		Description: "Report whether a user has connected a Google Sheet for habit logs",
	}, s.handleConnectionStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "append_log",
		Description: "Append one habit action to the user's Google Sheet",
	}, s.handleAppendLog)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_logs",
		Description: "Read every habit log row from the user's Google Sheet",
	}, s.handleGetLogs)
}

func (s *Server) handleConnectionStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UserInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	if input.UserID == "" {
		return nil, StatusOutput{}, fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput)
	}

	status, err := s.ports.Connection.Status(ctx, input.UserID)
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput(status), nil
}

func (s *Server) handleAppendLog(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AppendLogInput,
) (*mcp.CallToolResult, AppendLogOutput, error) {
	if input.UserID == "" {
		return nil, AppendLogOutput{}, fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput)
	}

	entry := domain.LogEntry{
		Date:      input.Date,
		Habit:     input.Habit,
		Type:      input.Type,
		Status:    input.Status,
		Value:     input.Value,
		Timestamp: input.Timestamp,
	}
	if err := s.ports.Logs.Append(ctx, input.UserID, entry); err != nil {
		return nil, AppendLogOutput{}, err
	}

	return nil, AppendLogOutput{Success: true}, nil
}

func (s *Server) handleGetLogs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UserInput,
) (*mcp.CallToolResult, GetLogsOutput, error) {
	if input.UserID == "" {
		return nil, GetLogsOutput{}, fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput)
	}

	logs, err := s.ports.Logs.List(ctx, input.UserID)
	if err != nil {
		return nil, GetLogsOutput{}, err
	}

	output := GetLogsOutput{
		Logs:  make([]LogOutput, len(logs)),
		Count: len(logs),
	}
	for i, l := range logs {
		output.Logs[i] = LogOutput(l)
	}

	return nil, output, nil
}
