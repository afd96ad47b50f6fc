package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/custodia-labs/habitsync/internal/core/domain"
	"github.com/custodia-labs/habitsync/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("writing response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeFailure maps err to a status code and writes its message.
func writeFailure(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), messageFor(err))
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsAuthError(err):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrSpreadsheetNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error) string {
	if errors.Is(err, domain.ErrInvalidInput) {
		if msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": "); msg != "" {
			return msg
		}
	}
	return err.Error()
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}
