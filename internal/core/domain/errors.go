package domain

import (
	"errors"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Credential resolution errors.

	// ErrNotConnected indicates the user never completed the OAuth flow.
	ErrNotConnected = errors.New("not connected")

	// ErrCorruptState indicates the stored record is malformed.
	ErrCorruptState = errors.New("corrupt state")

	// ErrReauthRequired indicates the refresh failed and the user must consent again.
	ErrReauthRequired = errors.New("reauthorization required")

	// ErrBackendUnavailable indicates the store backend could not be read or written.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrConfiguration indicates required configuration is missing or invalid.
	ErrConfiguration = errors.New("configuration error")

	// Connection setup errors.

	// ErrTokenExchange indicates the authorization code could not be exchanged.
	ErrTokenExchange = errors.New("token exchange failed")

	// ErrSpreadsheetSetup indicates the log spreadsheet could not be created.
	ErrSpreadsheetSetup = errors.New("spreadsheet setup failed")

	// ErrSpreadsheetNotFound indicates the stored spreadsheet no longer exists.
	ErrSpreadsheetNotFound = errors.New("spreadsheet not found")
)

// Error is a user-facing failure carrying a remediation hint.
// It matches its Kind with errors.Is and unwraps to the underlying cause.
type Error struct {
	Kind    error
	Message string
	Hint    string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Hint != "" {
		b.WriteString(". ")
		b.WriteString(e.Hint)
	}
	if e.Err != nil {
		b.WriteString(" (")
		b.WriteString(e.Err.Error())
		b.WriteString(")")
	}
	return b.String()
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail is the message followed by the cause, without the hint.
func (e *Error) Detail() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

// NewNotConnectedError is returned when no record exists for a user.
func NewNotConnectedError() *Error {
	return &Error{
		Kind:    ErrNotConnected,
		Message: "User not connected to Google Sheets",
		Hint:    "Please connect via Settings → Google Sheets.",
	}
}

// NewCorruptStateError is returned when a stored record has no tokens.
func NewCorruptStateError() *Error {
	return &Error{
		Kind:    ErrCorruptState,
		Message: "Stored token data is corrupted",
		Hint:    "Please reconnect Google Sheets in Settings.",
	}
}

// NewReauthRequiredError wraps a failed token refresh.
func NewReauthRequiredError(cause error) *Error {
	return &Error{
		Kind:    ErrReauthRequired,
		Message: "Google token refresh failed",
		Hint:    "Please reconnect Google Sheets in Settings.",
		Err:     cause,
	}
}

// NewBackendUnavailableError wraps a failed store operation.
func NewBackendUnavailableError(op string, cause error) *Error {
	return &Error{
		Kind:    ErrBackendUnavailable,
		Message: "Credential store unavailable during " + op,
		Hint:    "This is temporary, please try again shortly.",
		Err:     cause,
	}
}

// NewTokenExchangeError wraps a failed authorization code exchange.
func NewTokenExchangeError(cause error) *Error {
	return &Error{Kind: ErrTokenExchange, Message: "Token exchange failed", Err: cause}
}

// NewSpreadsheetSetupError wraps a failed spreadsheet creation.
func NewSpreadsheetSetupError(cause error) *Error {
	return &Error{Kind: ErrSpreadsheetSetup, Message: "Failed to create spreadsheet", Err: cause}
}

// NewSheetAccessError wraps Google rejecting a credential the resolver still
// considered valid, such as access revoked before expiry.
func NewSheetAccessError(cause error) *Error {
	return &Error{
		Kind:    ErrReauthRequired,
		Message: "Google rejected access to the spreadsheet",
		Hint:    "Please reconnect Google Sheets in Settings.",
		Err:     cause,
	}
}

// NewSpreadsheetNotFoundError wraps a spreadsheet that was deleted or moved
// out of reach. Reconnecting alone reuses the stored ID, so the user has to
// disconnect first.
func NewSpreadsheetNotFoundError(cause error) *Error {
	return &Error{
		Kind:    ErrSpreadsheetNotFound,
		Message: "Google Sheet not found, it may have been deleted",
		Hint:    "Disconnect and reconnect Google Sheets in Settings to create a new one.",
		Err:     cause,
	}
}

// MissingConfigError names every required configuration value that is absent.
type MissingConfigError struct {
	Component string
	Keys      []string
}

func (e *MissingConfigError) Error() string {
	return "missing " + e.Component + " configuration: " + strings.Join(e.Keys, ", ")
}

// Is matches ErrConfiguration.
func (e *MissingConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// IsAuthError reports whether err means the user has to (re)connect.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotConnected) ||
		errors.Is(err, ErrCorruptState) ||
		errors.Is(err, ErrReauthRequired)
}
