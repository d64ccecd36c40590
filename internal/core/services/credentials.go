package services

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/custodia-labs/docrelay/internal/core/domain"
	"github.com/custodia-labs/docrelay/internal/core/ports/driven"
	"github.com/custodia-labs/docrelay/internal/core/ports/driving"
	"github.com/custodia-labs/docrelay/internal/logger"
)

// Ensure CredentialManager implements the interface.
var _ driving.CredentialProvider = (*CredentialManager)(nil)

const reauthHint = "run `docrelay auth login` to authorize again"

// CredentialManager owns the process credential. It serves a cached
// copy while it is valid, otherwise loads, refreshes or acquires a new
// one and persists it. Callers may share one manager across goroutines:
// at most one refresh or interactive flow runs at a time.
type CredentialManager struct {
	store      driven.CredentialStore
	oauth      driven.OAuthClient
	authorizer driven.Authorizer
	now        func() time.Time

	mu     sync.RWMutex
	cached *domain.Credential
}

// NewCredentialManager creates a credential manager. authorizer may be
// nil, in which case a missing credential is reported as
// domain.ErrNoCredential instead of starting an interactive flow.
func NewCredentialManager(
	store driven.CredentialStore,
	oauth driven.OAuthClient,
	authorizer driven.Authorizer,
) *CredentialManager {
	return &CredentialManager{
		store:      store,
		oauth:      oauth,
		authorizer: authorizer,
		now:        time.Now,
	}
}

// GetCredentials returns a valid credential.
func (m *CredentialManager) GetCredentials(ctx context.Context) (*domain.Credential, error) {
	// Fast path: read lock for a cached, valid credential
	m.mu.RLock()
	if m.cached.Valid(m.now()) {
		cred := m.cached.Clone()
		m.mu.RUnlock()
		return cred, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if m.cached.Valid(m.now()) {
		return m.cached.Clone(), nil
	}

	cred, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}
	m.cached = cred
	return cred.Clone(), nil
}

// Login runs the interactive authorization flow unconditionally, replacing
// any stored credential.
func (m *CredentialManager) Login(ctx context.Context) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, err := m.authorize(ctx)
	if err != nil {
		return nil, err
	}
	m.cached = cred
	return cred.Clone(), nil
}

// Invalidate drops the cached credential so the next call reloads it
// from the store.
func (m *CredentialManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cached = nil
}

// acquire runs steps two to five of the lookup. Caller holds m.mu.
func (m *CredentialManager) acquire(ctx context.Context) (*domain.Credential, error) {
	stored, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoCredential) {
			logger.Warnw("stored credential unusable", logger.FieldError, err)
		}
		stored = nil
	}

	now := m.now()
	scopes := m.oauth.Scopes()

	if stored != nil && !stored.HasScopes(scopes) {
		logger.Info("Stored credential lacks required scopes, re-authorizing")
		return m.authorize(ctx)
	}

	if stored.Valid(now) {
		logger.Debug("Using stored credential")
		return stored, nil
	}

	if stored.CanRefresh() {
		return m.refresh(ctx, stored)
	}

	return m.authorize(ctx)
}

func (m *CredentialManager) refresh(ctx context.Context, stored *domain.Credential) (*domain.Credential, error) {
	logger.Debug("Refreshing expired credential")

	cred, err := m.oauth.Refresh(ctx, stored)
	if err != nil {
		err = domain.Mark(errors.Wrap(err, "refreshing credential"), domain.ErrRefreshFailed)
		return nil, errors.WithHint(err, reauthHint)
	}
	if cred.RefreshToken == "" {
		cred.RefreshToken = stored.RefreshToken
	}
	if len(cred.Scopes) == 0 {
		cred.Scopes = stored.Scopes
	}
	m.persist(ctx, cred)
	return cred, nil
}

func (m *CredentialManager) authorize(ctx context.Context) (*domain.Credential, error) {
	if m.authorizer == nil {
		err := errors.Wrap(domain.ErrNoCredential, "no usable credential and interactive authorization is disabled")
		return nil, errors.WithHint(err, reauthHint)
	}

	req, err := newAuthRequest()
	if err != nil {
		return nil, domain.Mark(errors.Wrap(err, "generating authorization request"), domain.ErrInteractiveFlowFailed)
	}

	redirectURI := m.authorizer.RedirectURI()
	authURL := m.oauth.AuthCodeURL(req.state, req.verifier, redirectURI)

	logger.Section("Authorization")
	code, err := m.authorizer.Authorize(ctx, authURL, req.state)
	if err != nil {
		return nil, domain.Mark(errors.Wrap(err, "awaiting authorization"), domain.ErrInteractiveFlowFailed)
	}

	cred, err := m.oauth.Exchange(ctx, code, req.verifier, redirectURI)
	if err != nil {
		return nil, domain.Mark(errors.Wrap(err, "exchanging authorization code"), domain.ErrInteractiveFlowFailed)
	}

	m.persist(ctx, cred)
	return cred, nil
}

// persist saves cred. A failed write leaves the in-memory credential
// usable for this process, so it is logged rather than returned.
func (m *CredentialManager) persist(ctx context.Context, cred *domain.Credential) {
	if err := m.store.Save(ctx, cred); err != nil {
		logger.Errorw("failed to persist credential", logger.FieldError, err)
	}
}
