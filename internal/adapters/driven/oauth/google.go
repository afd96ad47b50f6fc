// Package oauth provides the Google authorization-code client.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/habitsync/internal/core/domain"
	"github.com/custodia-labs/habitsync/internal/core/ports/driven"
)

// Scopes are the only permissions requested: spreadsheet access and
// access to files created by this app.
var Scopes = []string{
	sheets.SpreadsheetsScope,
	drive.DriveFileScope,
}

// Config holds the OAuth client settings.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// Endpoint overrides the Google endpoint. Zero means google.Endpoint.
	Endpoint oauth2.Endpoint
	// HTTPClient is used for token requests. Nil means http.DefaultClient.
	HTTPClient *http.Client
}

// GoogleClient implements driven.AuthProvider against Google OAuth 2.0.
type GoogleClient struct {
	config     *oauth2.Config
	httpClient *http.Client
}

var _ driven.AuthProvider = (*GoogleClient)(nil)

// NewGoogleClient validates cfg and builds a client. It makes no network
// calls. A missing value yields a *domain.MissingConfigError naming every
// absent key.
func NewGoogleClient(cfg Config) (*GoogleClient, error) {
	var missing []string
	if strings.TrimSpace(cfg.ClientID) == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if strings.TrimSpace(cfg.ClientSecret) == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if strings.TrimSpace(cfg.RedirectURI) == "" {
		missing = append(missing, "GOOGLE_REDIRECT_URI")
	}
	if len(missing) > 0 {
		return nil, &domain.MissingConfigError{Component: "Google OAuth", Keys: missing}
	}

	endpoint := cfg.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}

	return &GoogleClient{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       Scopes,
			Endpoint:     endpoint,
		},
		httpClient: cfg.HTTPClient,
	}, nil
}

// AuthCodeURL returns the consent URL. The user ID travels in the state
// parameter; loginHint pre-selects the Google account when set.
// Consent is not forced, so returning users are not prompted again.
func (c *GoogleClient) AuthCodeURL(userID, loginHint string) (string, error) {
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline}
	if loginHint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", loginHint))
	}
	return c.config.AuthCodeURL(userID, opts...), nil
}

// Exchange trades an authorization code for tokens.
func (c *GoogleClient) Exchange(ctx context.Context, code string) (domain.Tokens, error) {
	if code == "" {
		return domain.Tokens{}, fmt.Errorf("%w: authorization code is empty", domain.ErrInvalidInput)
	}

	tok, err := c.config.Exchange(c.withClient(ctx), code)
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("exchanging authorization code: %w", describe(err))
	}
	return tokensFrom(tok), nil
}

// Refresh obtains a new access token. The returned refresh token is nil
// unless the server rotated it.
func (c *GoogleClient) Refresh(ctx context.Context, refreshToken string) (domain.Tokens, error) {
	if refreshToken == "" {
		return domain.Tokens{}, errors.New("no refresh token stored")
	}

	src := c.config.TokenSource(c.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("refreshing token: %w", describe(err))
	}

	// x/oauth2 copies the request's refresh token into the result when the
	// response omits one.
	tokens := tokensFrom(tok)
	if tok.RefreshToken == refreshToken {
		tokens.RefreshToken = nil
	}
	return tokens, nil
}

func (c *GoogleClient) withClient(ctx context.Context) context.Context {
	if c.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func tokensFrom(tok *oauth2.Token) domain.Tokens {
	return domain.Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: domain.StringPtr(tok.RefreshToken),
		ExpiryDate:   domain.ExpiryPtr(tok.Expiry),
	}
}

// describe shortens token endpoint errors to their OAuth error code.
func describe(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.ErrorCode != "" {
		if re.ErrorDescription != "" {
			return fmt.Errorf("%s: %s: %w", re.ErrorCode, re.ErrorDescription, err)
		}
		return fmt.Errorf("%s: %w", re.ErrorCode, err)
	}
	return err
}

// Unconfigured stands in for the client when its configuration is missing.
// Every call fails with Err, so the rest of the service can still run.
type Unconfigured struct {
	Err error
}

var _ driven.AuthProvider = Unconfigured{}

// AuthCodeURL implements driven.AuthProvider.
func (u Unconfigured) AuthCodeURL(string, string) (string, error) {
	return "", u.Err
}

// Exchange implements driven.AuthProvider.
func (u Unconfigured) Exchange(context.Context, string) (domain.Tokens, error) {
	return domain.Tokens{}, u.Err
}

// Refresh implements driven.AuthProvider.
func (u Unconfigured) Refresh(context.Context, string) (domain.Tokens, error) {
	return domain.Tokens{}, u.Err
}
