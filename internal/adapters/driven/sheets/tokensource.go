package sheets

import (
	"golang.org/x/oauth2"

	"github.com/custodia-labs/habitsync/internal/core/domain"
)

// staticTokenSource hands out a resolved credential unchanged.
// Refreshing is the resolver's job, so this source never refreshes.
type staticTokenSource struct {
	cred domain.Credential
}

// NewTokenSource creates an oauth2.TokenSource from a resolved credential,
// for use with option.WithTokenSource.
func NewTokenSource(cred domain.Credential) oauth2.TokenSource {
	return staticTokenSource{cred: cred}
}

// Token implements oauth2.TokenSource.
func (s staticTokenSource) Token() (*oauth2.Token, error) {
	tokenType := s.cred.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken: s.cred.AccessToken,
		TokenType:   tokenType,
		Expiry:      s.cred.Expiry,
	}, nil
}
