package driven

import (
	"context"

	"github.com/custodia-labs/docrelay/internal/core/domain"
)

// OAuthClient performs the OAuth2 exchanges against the identity provider.
type OAuthClient interface {
	// AuthCodeURL builds the consent URL for an offline-access
	// authorization-code flow with a PKCE S256 challenge derived from verifier.
	AuthCodeURL(state, verifier, redirectURI string) string

	// Exchange trades an authorization code for a new credential.
	Exchange(ctx context.Context, code, verifier, redirectURI string) (*domain.Credential, error)

	// Refresh trades cred's refresh token for a new access token.
	// The returned credential keeps cred's refresh token if the provider
	// does not rotate it.
	Refresh(ctx context.Context, cred *domain.Credential) (*domain.Credential, error)

	// Scopes returns the scopes requested by AuthCodeURL.
	Scopes() []string
}

// Authorizer presents an authorization URL to the user and waits for the
// resulting code. Implementations decide how: a local callback listener,
// a console prompt, or refusing outright in non-interactive contexts.
type Authorizer interface {
	// RedirectURI is where the provider sends the user after consent.
	RedirectURI() string

	// Authorize presents authURL and blocks until a code for state arrives.
	Authorize(ctx context.Context, authURL, state string) (string, error)
}

// CredentialStore persists the single process credential.
type CredentialStore interface {
	// Load returns the stored credential, or domain.ErrNoCredential.
	Load(ctx context.Context) (*domain.Credential, error)

	// Save replaces the stored credential atomically.
	Save(ctx context.Context, cred *domain.Credential) error
}
