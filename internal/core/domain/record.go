package domain

import (
	"fmt"
	"time"
)

// RefreshSkew is how long before the recorded expiry an access token is
// already treated as expired.
const RefreshSkew = 60 * time.Second

// Tokens holds the OAuth tokens for one user in the persisted wire shape.
// Nil pointers serialise as JSON null.
type Tokens struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is only issued by Google on first consent.
	RefreshToken *string `json:"refresh_token"`
	// ExpiryDate is the access token expiry in epoch milliseconds.
	ExpiryDate *int64 `json:"expiry_date"`
}

// Record is the persisted per-user credential record.
//
// Records are treated as values: use the With* methods to derive an
// updated record instead of mutating a loaded one.
type Record struct {
	// Tokens is nil only when the stored data is corrupt.
	Tokens *Tokens `json:"tokens"`
	// SpreadsheetID is set on first authorization and never changes.
	SpreadsheetID string `json:"spreadsheetId"`
	// SheetURL is the display URL for SpreadsheetID.
	SheetURL string `json:"sheetUrl"`
	// ConnectedAt is set on first authorization and never changes.
	ConnectedAt time.Time `json:"connectedAt"`
}

// StringPtr returns nil for an empty string, a pointer to s otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ExpiryPtr converts an expiry time to epoch milliseconds.
// The zero time maps to nil.
func ExpiryPtr(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// SheetURLFor returns the edit URL of a Google spreadsheet.
func SheetURLFor(spreadsheetID string) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit", spreadsheetID)
}

// RefreshTokenValue returns the refresh token or "" when absent.
func (t *Tokens) RefreshTokenValue() string {
	if t == nil || t.RefreshToken == nil {
		return ""
	}
	return *t.RefreshToken
}

// Expiry returns the access token expiry, or the zero time when unknown.
func (t *Tokens) Expiry() time.Time {
	if t == nil || t.ExpiryDate == nil || *t.ExpiryDate == 0 {
		return time.Time{}
	}
	return time.UnixMilli(*t.ExpiryDate)
}

// NeedsRefresh reports whether the access token expires within RefreshSkew
// of now. Tokens without a known expiry never need refreshing.
func (t *Tokens) NeedsRefresh(now time.Time) bool {
	if t == nil || t.ExpiryDate == nil || *t.ExpiryDate <= 0 {
		return false
	}
	return now.UnixMilli() >= *t.ExpiryDate-RefreshSkew.Milliseconds()
}

// MergeTokens combines freshly issued tokens with the previous ones.
// The previous refresh token survives when the new response omits one.
func MergeTokens(previous *Tokens, issued Tokens) Tokens {
	merged := Tokens{
		AccessToken:  issued.AccessToken,
		RefreshToken: issued.RefreshToken,
		ExpiryDate:   issued.ExpiryDate,
	}
	if merged.RefreshToken == nil && previous != nil && previous.RefreshToken != nil {
		rt := *previous.RefreshToken
		merged.RefreshToken = &rt
	}
	return merged
}

// WithTokens returns a copy of r carrying tokens merged onto the current ones.
func (r Record) WithTokens(issued Tokens) Record {
	merged := MergeTokens(r.Tokens, issued)
	r.Tokens = &merged
	return r
}

// Credential is the bearer credential handed to downstream API clients.
type Credential struct {
	AccessToken string
	TokenType   string
	Expiry      time.Time
}

// AuthorizationHeader returns the value for an Authorization header.
func (c Credential) AuthorizationHeader() string {
	tokenType := c.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return tokenType + " " + c.AccessToken
}

// CredentialFrom builds a bearer credential from stored tokens.
func CredentialFrom(t *Tokens) Credential {
	return Credential{
		AccessToken: t.AccessToken,
		TokenType:   "Bearer",
		Expiry:      t.Expiry(),
	}
}

// Resolution is the result of resolving a user's credentials.
type Resolution struct {
	Credential    Credential
	SpreadsheetID string
}
