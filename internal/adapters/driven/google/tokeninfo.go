package google

import (
	"context"
	"strings"
	"time"

	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// TokenInfo describes an access token as Google sees it.
type TokenInfo struct {
	Email     string
	Scopes    []string
	ExpiresIn time.Duration
}

// TokenInspector asks Google's tokeninfo endpoint about access tokens.
type TokenInspector struct {
	svc *oauth2api.Service
}

// NewTokenInspector creates a TokenInspector. The service needs no
// credential of its own; the inspected token is sent as a parameter.
func NewTokenInspector(ctx context.Context, opts ...option.ClientOption) (*TokenInspector, error) {
	if len(opts) == 0 {
		opts = []option.ClientOption{option.WithoutAuthentication()}
	}
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &TokenInspector{svc: svc}, nil
}

// Inspect validates tok and returns what Google reports about it. An
// invalid or revoked token returns an error.
func (i *TokenInspector) Inspect(ctx context.Context, tok *oauth2.Token) (*TokenInfo, error) {
	info, err := i.svc.Tokeninfo().AccessToken(tok.AccessToken).Context(ctx).Do()
	if err != nil {
		return nil, WrapError(err)
	}
	return &TokenInfo{
		Email:     info.Email,
		Scopes:    strings.Fields(info.Scope),
		ExpiresIn: time.Duration(info.ExpiresIn) * time.Second,
	}, nil
}
