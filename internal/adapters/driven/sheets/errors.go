package sheets

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/habitsync/internal/core/domain"
)

// Sheets API errors.
var (
	// ErrUnauthorized indicates the access token was rejected.
	ErrUnauthorized = errors.New("sheets: unauthorised (invalid credentials)")

	// ErrForbidden indicates the token lacks access to the spreadsheet.
	ErrForbidden = errors.New("sheets: forbidden (insufficient permissions)")

	// ErrNotFound indicates the spreadsheet no longer exists.
	ErrNotFound = errors.New("sheets: spreadsheet not found")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("sheets: rate limit exceeded")
)

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || hasCode(err, http.StatusUnauthorized)
}

// IsNotFound returns true if the error indicates a missing spreadsheet.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || hasCode(err, http.StatusNotFound)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited) || hasCode(err, http.StatusTooManyRequests)
}

func hasCode(err error, code int) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == code
}

// WrapError converts a Google API error to one of the package errors,
// keeping the API message.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	var kind error
	switch gerr.Code {
	case http.StatusUnauthorized:
		kind = ErrUnauthorized
	case http.StatusForbidden:
		kind = ErrForbidden
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusTooManyRequests:
		kind = ErrRateLimited
	default:
		return err
	}
	if gerr.Message == "" {
		return kind
	}
	return &apiError{kind: kind, message: gerr.Message}
}

// toDomain lifts credential and missing-spreadsheet failures into the domain
// taxonomy. The package error stays in the chain.
func toDomain(err error) error {
	switch {
	case err == nil:
		return nil
	case IsUnauthorized(err), errors.Is(err, ErrForbidden):
		return domain.NewSheetAccessError(err)
	case IsNotFound(err):
		return domain.NewSpreadsheetNotFoundError(err)
	default:
		return err
	}
}

type apiError struct {
	kind    error
	message string
}

func (e *apiError) Error() string { return e.kind.Error() + ": " + e.message }

func (e *apiError) Unwrap() error { return e.kind }
