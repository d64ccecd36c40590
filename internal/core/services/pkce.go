package services

import (
	"crypto/rand"
	"encoding/base64"
)

// PKCE code verifier length (RFC 7636 recommends 43-128 characters).
const codeVerifierLength = 64

// authRequest holds the per-attempt secrets of one authorization-code flow.
type authRequest struct {
	state    string
	verifier string
}

// newAuthRequest generates a fresh state and PKCE verifier.
func newAuthRequest() (authRequest, error) {
	state, err := generateState()
	if err != nil {
		return authRequest{}, err
	}
	verifier, err := generateCodeVerifier()
	if err != nil {
		return authRequest{}, err
	}
	return authRequest{state: state, verifier: verifier}, nil
}

// generateCodeVerifier creates a cryptographically random code verifier for PKCE.
func generateCodeVerifier() (string, error) {
	bytes := make([]byte, codeVerifierLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// generateState creates a random state parameter for CSRF protection.
func generateState() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
