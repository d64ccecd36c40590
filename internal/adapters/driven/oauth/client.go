// Package oauth implements the OAuth2 exchanges and the credential file
// used by the credential manager.
package oauth

import (
	"context"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/custodia-labs/docrelay/internal/core/domain"
	"github.com/custodia-labs/docrelay/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.OAuthClient = (*Client)(nil)

// ClientConfig identifies the OAuth app.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
	// Endpoint defaults to Google's when zero.
	Endpoint oauth2.Endpoint
	// HTTPClient is used for token requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Client performs authorization-code and refresh-token exchanges.
type Client struct {
	cfg ClientConfig
}

// NewClient creates an OAuth client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Endpoint.TokenURL == "" {
		cfg.Endpoint = google.Endpoint
	}
	return &Client{cfg: cfg}
}

// Scopes returns the requested scopes.
func (c *Client) Scopes() []string {
	return c.cfg.Scopes
}

// AuthCodeURL builds the consent URL. It asks for offline access and
// forces the consent screen so Google always issues a refresh token.
func (c *Client) AuthCodeURL(state, verifier, redirectURI string) string {
	return c.config(redirectURI).AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.S256ChallengeOption(verifier),
	)
}

// Exchange trades an authorization code for a credential.
func (c *Client) Exchange(ctx context.Context, code, verifier, redirectURI string) (*domain.Credential, error) {
	tok, err := c.config(redirectURI).Exchange(c.context(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, errors.Wrap(describe(err), "token exchange")
	}
	return c.credential(tok, c.cfg.ClientID, c.cfg.ClientSecret, c.cfg.Endpoint.TokenURL), nil
}

// Refresh trades cred's refresh token for a new access token. The token
// endpoint and client recorded in cred take precedence over the
// configured ones, so a token minted by another OAuth app still refreshes.
func (c *Client) Refresh(ctx context.Context, cred *domain.Credential) (*domain.Credential, error) {
	if cred == nil || cred.RefreshToken == "" {
		return nil, errors.New("credential has no refresh token")
	}

	cfg := c.config("")
	if cred.ClientID != "" {
		cfg.ClientID = cred.ClientID
		cfg.ClientSecret = cred.ClientSecret
	}
	if cred.TokenURI != "" {
		cfg.Endpoint.TokenURL = cred.TokenURI
	}

	tok, err := cfg.TokenSource(c.context(ctx), &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
	if err != nil {
		return nil, errors.Wrap(describe(err), "token refresh")
	}

	out := c.credential(tok, cfg.ClientID, cfg.ClientSecret, cfg.Endpoint.TokenURL)
	if scopeless(tok) {
		out.Scopes = cred.Scopes
	}
	if out.RefreshToken == "" {
		out.RefreshToken = cred.RefreshToken
	}
	return out, nil
}

func (c *Client) config(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Endpoint:     c.cfg.Endpoint,
		RedirectURL:  redirectURI,
		Scopes:       c.cfg.Scopes,
	}
}

func (c *Client) context(ctx context.Context) context.Context {
	if c.cfg.HTTPClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.cfg.HTTPClient)
}

func (c *Client) credential(tok *oauth2.Token, clientID, clientSecret, tokenURI string) *domain.Credential {
	scopes := c.cfg.Scopes
	if granted, ok := tok.Extra("scope").(string); ok && granted != "" {
		scopes = strings.Fields(granted)
	}
	return &domain.Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		Scopes:       scopes,
		TokenURI:     tokenURI,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}
}

func scopeless(tok *oauth2.Token) bool {
	s, _ := tok.Extra("scope").(string)
	return s == ""
}

// describe surfaces the provider's error code, which is what the user
// needs to see ("invalid_grant" means the refresh token was revoked).
func describe(err error) error {
	var rerr *oauth2.RetrieveError
	if !errors.As(err, &rerr) || rerr.ErrorCode == "" {
		return err
	}
	msg := rerr.ErrorCode
	if rerr.ErrorDescription != "" {
		msg += ": " + rerr.ErrorDescription
	}
	return errors.Wrap(err, msg)
}
