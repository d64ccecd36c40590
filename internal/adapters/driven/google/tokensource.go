package google

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/custodia-labs/docrelay/internal/core/domain"
	"github.com/custodia-labs/docrelay/internal/core/ports/driving"
)

// TokenSourceAdapter adapts a CredentialProvider to oauth2.TokenSource.
// oauth2.TokenSource has no context parameter, so every Token call runs
// under the context given at construction. API clients should use
// WithCredentials instead, which fetches under each request's context.
type TokenSourceAdapter struct {
	provider driving.CredentialProvider
	ctx      context.Context
}

// NewTokenSource creates an oauth2.TokenSource from a CredentialProvider.
func NewTokenSource(ctx context.Context, provider driving.CredentialProvider) oauth2.TokenSource {
	return &TokenSourceAdapter{
		provider: provider,
		ctx:      ctx,
	}
}

// Token implements oauth2.TokenSource interface.
func (t *TokenSourceAdapter) Token() (*oauth2.Token, error) {
	cred, err := t.provider.GetCredentials(t.ctx)
	if err != nil {
		return nil, err
	}
	return toToken(cred), nil
}

func toToken(cred *domain.Credential) *oauth2.Token {
	tokenType := cred.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken:  cred.AccessToken,
		TokenType:    tokenType,
		RefreshToken: cred.RefreshToken,
		Expiry:       cred.Expiry,
	}
}

// Transport authorizes each request with a credential obtained under the
// request's context, so a refresh is bounded by the caller's deadline.
type Transport struct {
	Provider driving.CredentialProvider
	// Base defaults to http.DefaultTransport.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	cred, err := t.Provider.GetCredentials(req.Context())
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, err
	}

	authed := req.Clone(req.Context())
	toToken(cred).SetAuthHeader(authed)

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(authed)
}

// WithCredentials authenticates a Google API client through provider.
func WithCredentials(provider driving.CredentialProvider) option.ClientOption {
	return option.WithHTTPClient(&http.Client{Transport: &Transport{Provider: provider}})
}
