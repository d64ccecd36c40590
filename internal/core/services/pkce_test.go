package services

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeVerifier(t *testing.T) {
	t.Run("decodes to codeVerifierLength bytes", func(t *testing.T) {
		verifier, err := generateCodeVerifier()
		require.NoError(t, err)

		decoded, err := base64.RawURLEncoding.DecodeString(verifier)
		require.NoError(t, err)
		assert.Len(t, decoded, codeVerifierLength)
	})

	t.Run("is URL safe without padding", func(t *testing.T) {
		verifier, err := generateCodeVerifier()
		require.NoError(t, err)

		assert.NotContains(t, verifier, "=")
		assert.NotContains(t, verifier, "+")
		assert.NotContains(t, verifier, "/")
		assert.GreaterOrEqual(t, len(verifier), 43)
		assert.LessOrEqual(t, len(verifier), 128)
	})

	t.Run("never repeats", func(t *testing.T) {
		seen := make(map[string]bool)
		for range 50 {
			v, err := generateCodeVerifier()
			require.NoError(t, err)
			assert.False(t, seen[v])
			seen[v] = true
		}
	})
}

func TestNewAuthRequest(t *testing.T) {
	a, err := newAuthRequest()
	require.NoError(t, err)
	b, err := newAuthRequest()
	require.NoError(t, err)

	assert.NotEmpty(t, a.state)
	assert.NotEmpty(t, a.verifier)
	assert.NotEqual(t, a.state, b.state)
	assert.NotEqual(t, a.verifier, b.verifier)
	assert.False(t, strings.ContainsAny(a.state, "+/="))
}
