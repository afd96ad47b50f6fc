package domain

import (
	"regexp"
	"strings"
)

// Default values applied to log entries before they are written.
const (
	DefaultLogStatus = "logged"
)

var logDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// LogEntry is one habit action, mirrored as one spreadsheet row.
type LogEntry struct {
	Date      string `json:"date"`
	Habit     string `json:"habit"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Value     string `json:"value"`
	Timestamp string `json:"timestamp"`
}

// IsValidLogDate reports whether s has the YYYY-MM-DD shape.
func IsValidLogDate(s string) bool {
	return logDatePattern.MatchString(s)
}

// IsComplete reports whether the entry carries both required fields.
func (e LogEntry) IsComplete() bool {
	return strings.TrimSpace(e.Date) != "" && strings.TrimSpace(e.Habit) != ""
}

// ConnectionStatus describes whether a user has connected a spreadsheet.
type ConnectionStatus struct {
	Connected     bool   `json:"connected"`
	SheetURL      string `json:"sheetUrl,omitempty"`
	SpreadsheetID string `json:"spreadsheetId,omitempty"`
	ConnectedAt   string `json:"connectedAt,omitempty"`
}

// AppState is an opaque snapshot of the frontend's habit state.
type AppState map[string]any
