package domain

import (
	"slices"
	"time"
)

// Credential is an OAuth2 access/refresh token pair plus the metadata
// needed to refresh it. It is a capability, not user data.
type Credential struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"token"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type,omitempty"`
	// Expiry is when the access token expires. Zero means it never does.
	Expiry time.Time `json:"expiry,omitzero"`
	// Scopes are the granted OAuth scopes.
	Scopes []string `json:"scopes,omitempty"`
	// TokenURI is the provider's token endpoint.
	TokenURI string `json:"token_uri,omitempty"`
	// ClientID and ClientSecret identify the OAuth app that minted the token.
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// expiryDelta treats tokens this close to expiry as already expired, so
// a token is never handed out moments before the provider rejects it.
const expiryDelta = 30 * time.Second

// Expired returns true if the access token is missing or past expiry at now.
func (c *Credential) Expired(now time.Time) bool {
	if c.AccessToken == "" {
		return true
	}
	if c.Expiry.IsZero() {
		return false
	}
	return !now.Add(expiryDelta).Before(c.Expiry)
}

// Valid returns true if the credential can be used as-is at now.
func (c *Credential) Valid(now time.Time) bool {
	return c != nil && !c.Expired(now)
}

// CanRefresh returns true if a refresh token is available.
func (c *Credential) CanRefresh() bool {
	return c != nil && c.RefreshToken != ""
}

// HasScopes returns true if every scope in want was granted. A
// credential with no recorded scopes is assumed to cover everything.
func (c *Credential) HasScopes(want []string) bool {
	if len(c.Scopes) == 0 {
		return true
	}
	for _, s := range want {
		if !slices.Contains(c.Scopes, s) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (c *Credential) Clone() *Credential {
	if c == nil {
		return nil
	}
	out := *c
	out.Scopes = slices.Clone(c.Scopes)
	return &out
}
