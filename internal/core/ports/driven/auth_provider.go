package driven

import (
	"context"

	"github.com/custodia-labs/habitsync/internal/core/domain"
)

// AuthProvider talks to the external OAuth2 authorization server.
type AuthProvider interface {
	// AuthCodeURL builds the consent URL. The user ID travels as the
	// state parameter; loginHint may be empty.
	AuthCodeURL(userID, loginHint string) (string, error)

	// Exchange trades an authorization code for tokens.
	Exchange(ctx context.Context, code string) (domain.Tokens, error)

	// Refresh obtains a new access token. The returned RefreshToken is nil
	// when the provider did not rotate it.
	Refresh(ctx context.Context, refreshToken string) (domain.Tokens, error)
}
