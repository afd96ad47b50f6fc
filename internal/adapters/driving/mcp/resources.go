package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "habitsync://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "users/{userId}/status",
		Name:        "connection-status",
		Description: "Google Sheets connection of a user",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "users/{userId}/logs",
		Name:        "habit-logs",
		Description: "Habit log rows stored in a user's Google Sheet",
		MIMEType:    "application/json",
	}, s.handleLogsResource)
}

func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	userID := extractUserID(req.Params.URI, "/status")
	if userID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	status, err := s.ports.Connection.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, status)
}

func (s *Server) handleLogsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	userID := extractUserID(req.Params.URI, "/logs")
	if userID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	logs, err := s.ports.Logs.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading logs: %w", err)
	}
	return jsonResource(req.Params.URI, logs)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractUserID extracts the user ID from habitsync://users/{userId}<suffix>.
func extractUserID(uri, suffix string) string {
	const prefix = uriScheme + "users/"

	rest, ok := strings.CutPrefix(uri, prefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, suffix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
