package driving

import (
	"context"

	"github.com/custodia-labs/docrelay/internal/core/domain"
)

// CredentialProvider hands out a valid credential, acquiring or
// refreshing it as needed.
type CredentialProvider interface {
	// GetCredentials returns a currently valid credential.
	GetCredentials(ctx context.Context) (*domain.Credential, error)

	// Invalidate drops any in-memory cache so the next call reloads.
	Invalidate()
}
