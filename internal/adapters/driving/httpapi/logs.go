package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/habitsync/internal/core/domain"
	"github.com/custodia-labs/habitsync/internal/logger"
)

// logEntry is a log entry as the web app sends it. Value may be a number.
type logEntry struct {
	Date      string `json:"date"`
	Habit     string `json:"habit"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Value     any    `json:"value"`
	Timestamp string `json:"timestamp"`
}

func (e logEntry) toDomain() domain.LogEntry {
	value := ""
	if e.Value != nil {
		value = fmt.Sprint(e.Value)
	}
	return domain.LogEntry{
		Date:      e.Date,
		Habit:     e.Habit,
		Type:      e.Type,
		Status:    e.Status,
		Value:     value,
		Timestamp: e.Timestamp,
	}
}

type appendLogRequest struct {
	UserID string `json:"userId" validate:"notblank"`
	logEntry
}

type successResponse struct {
	Success bool `json:"success"`
}

func (a *API) appendLog(w http.ResponseWriter, r *http.Request) {
	var req appendLogRequest
	if err := a.decode(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}

	if err := a.ports.Logs.Append(r.Context(), req.UserID, req.toDomain()); err != nil {
		logger.Warn("append log failed", "user_id", req.UserID, "error", err)
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

type logsResponse struct {
	Logs []domain.LogEntry `json:"logs"`
}

func (a *API) getLogs(w http.ResponseWriter, r *http.Request) {
	req := userRequest{UserID: r.URL.Query().Get("userId")}
	if err := a.validator.Struct(req); err != nil {
		writeFailure(w, err)
		return
	}

	logs, err := a.ports.Logs.List(r.Context(), req.UserID)
	if err != nil {
		logger.Warn("reading logs failed", "user_id", req.UserID, "error", err)
		status := statusFor(err)
		if status == http.StatusInternalServerError && !isDomainError(err) {
			writeError(w, status, "Failed to read from Google Sheets: "+err.Error())
			return
		}
		writeError(w, status, messageFor(err))
		return
	}

	writeJSON(w, http.StatusOK, logsResponse{Logs: logs})
}

type syncLogsRequest struct {
	UserID string     `json:"userId" validate:"notblank"`
	Logs   []logEntry `json:"logs" validate:"required"`
}

type syncLogsResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

func (a *API) syncLogs(w http.ResponseWriter, r *http.Request) {
	var req syncLogsRequest
	if err := a.decode(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}

	entries := make([]domain.LogEntry, len(req.Logs))
	for i, e := range req.Logs {
		entries[i] = e.toDomain()
	}

	count, err := a.ports.Logs.Sync(r.Context(), req.UserID, entries)
	if err != nil {
		logger.Warn("sync logs failed", "user_id", req.UserID, "error", err)
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, syncLogsResponse{Success: true, Count: count})
}

func isDomainError(err error) bool {
	var de *domain.Error
	return errors.As(err, &de) || errors.Is(err, domain.ErrConfiguration)
}
