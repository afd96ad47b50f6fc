package httpapi

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/custodia-labs/habitsync/internal/core/domain"
	"github.com/custodia-labs/habitsync/internal/logger"
)

const settingsPath = "/app/settings"

// frontend returns the web app origin for redirects.
func (a *API) frontend(r *http.Request) string {
	if a.frontendURL != "" {
		return a.frontendURL
	}
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		proto = "https"
		if strings.Contains(r.Host, "localhost") {
			proto = "http"
		}
	}
	return proto + "://" + r.Host
}

func (a *API) redirectSettings(w http.ResponseWriter, r *http.Request, query string) {
	http.Redirect(w, r, a.frontend(r)+settingsPath+"?"+query, http.StatusFound)
}

func (a *API) redirectError(w http.ResponseWriter, r *http.Request, message string) {
	a.redirectSettings(w, r, "sheets_error="+url.QueryEscape(message))
}

// startAuthorization sends the browser to Google's consent screen.
func (a *API) startAuthorization(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.redirectError(w, r, "Invalid request method for Google Sheets connect.")
		return
	}

	q := r.URL.Query()
	userID := q.Get("userId")
	if userID == "" {
		a.redirectError(w, r, "Missing user identity for Google Sheets connection.")
		return
	}

	consentURL, err := a.ports.Connection.AuthorizeURL(userID, q.Get("userEmail"))
	if err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			a.redirectError(w, r, "Google OAuth is not configured: "+err.Error())
			return
		}
		a.redirectError(w, r, messageFor(err))
		return
	}

	http.Redirect(w, r, consentURL, http.StatusFound)
}

// completeAuthorization handles Google's redirect after consent.
func (a *API) completeAuthorization(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if denied := q.Get("error"); denied != "" {
		a.redirectError(w, r, denied)
		return
	}
	code := q.Get("code")
	if code == "" {
		a.redirectError(w, r, "No authorisation code received from Google.")
		return
	}
	userID := q.Get("state")
	if userID == "" {
		a.redirectError(w, r, "Missing state parameter. Please try connecting again.")
		return
	}

	sheetURL, err := a.ports.Connection.CompleteAuthorization(r.Context(), code, userID)
	if err != nil {
		logger.Warn("google sheets connection failed", "user_id", userID, "error", err)
		a.redirectError(w, r, connectFailure(err))
		return
	}

	logger.Info("google sheets connected", "user_id", userID)
	a.redirectSettings(w, r, "sheets_connected=true&sheet_url="+url.QueryEscape(sheetURL))
}

func connectFailure(err error) string {
	if errors.Is(err, domain.ErrConfiguration) {
		return "Server misconfiguration: " + err.Error()
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Detail()
	}
	return messageFor(err)
}

type userRequest struct {
	UserID string `json:"userId" validate:"notblank"`
}

func (a *API) status(w http.ResponseWriter, r *http.Request) {
	req := userRequest{UserID: r.URL.Query().Get("userId")}
	if err := a.validator.Struct(req); err != nil {
		writeFailure(w, err)
		return
	}

	status, err := a.ports.Connection.Status(r.Context(), req.UserID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type disconnectResponse struct {
	Success      bool `json:"success"`
	WasConnected bool `json:"wasConnected"`
}

func (a *API) disconnect(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := a.decode(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}

	existed, err := a.ports.Connection.Disconnect(r.Context(), req.UserID)
	if err != nil {
		logger.Error("failed to delete user data", "user_id", req.UserID, "error", err)
		writeError(w, statusFor(err), "Failed to disconnect. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, disconnectResponse{Success: true, WasConnected: existed})
}

// decode reads and validates a JSON request body.
func (a *API) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}
