package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrelay/internal/core/domain"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

var testScopes = []string{
	"https://www.googleapis.com/auth/documents",
	"https://www.googleapis.com/auth/drive.file",
	"https://www.googleapis.com/auth/gmail.send",
}

func validCredential() *domain.Credential {
	return &domain.Credential{
		AccessToken:  "access-valid",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		Expiry:       testNow.Add(time.Hour),
		Scopes:       testScopes,
	}
}

func expiredCredential() *domain.Credential {
	c := validCredential()
	c.AccessToken = "access-expired"
	c.Expiry = testNow.Add(-time.Minute)
	return c
}

func newTestManager(store *fakeCredentialStore, oauth *fakeOAuthClient, authz *fakeAuthorizer) *CredentialManager {
	var m *CredentialManager
	if authz == nil {
		m = NewCredentialManager(store, oauth, nil)
	} else {
		m = NewCredentialManager(store, oauth, authz)
	}
	m.now = func() time.Time { return testNow }
	return m
}

func TestCredentialManager_CachedCredentialIsIdempotent(t *testing.T) {
	store := &fakeCredentialStore{cred: validCredential()}
	oauth := &fakeOAuthClient{scopes: testScopes}
	m := newTestManager(store, oauth, nil)

	first, err := m.GetCredentials(context.Background())
	require.NoError(t, err)
	loads, saves := store.counts()
	require.Equal(t, 1, loads)
	require.Zero(t, saves)

	second, err := m.GetCredentials(context.Background())
	require.NoError(t, err)

	loads, saves = store.counts()
	refreshes, exchanges := oauth.counts()
	assert.Equal(t, 1, loads, "no additional file reads")
	assert.Zero(t, saves, "no file writes")
	assert.Zero(t, refreshes+exchanges, "no network calls")
	assert.Equal(t, first, second)
}

func TestCredentialManager_ReturnsCopies(t *testing.T) {
	store := &fakeCredentialStore{cred: validCredential()}
	m := newTestManager(store, &fakeOAuthClient{scopes: testScopes}, nil)

	first, err := m.GetCredentials(context.Background())
	require.NoError(t, err)
	first.AccessToken = "tampered"

	second, err := m.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-valid", second.AccessToken)
}

func TestCredentialManager_RefreshPath(t *testing.T) {
	store := &fakeCredentialStore{cred: expiredCredential()}
	oauth := &fakeOAuthClient{
		scopes: testScopes,
		refreshed: &domain.Credential{
			AccessToken: "access-new",
			TokenType:   "Bearer",
			Expiry:      testNow.Add(time.Hour),
		},
	}
	m := newTestManager(store, oauth, &fakeAuthorizer{code: "unused"})

	cred, err := m.GetCredentials(context.Background())
	require.NoError(t, err)

	refreshes, exchanges := oauth.counts()
	_, saves := store.counts()
	assert.Equal(t, 1, refreshes, "exactly one refresh exchange")
	assert.Zero(t, exchanges)
	assert.Equal(t, 1, saves, "exactly one persisted token file")

	assert.Equal(t, "access-new", cred.AccessToken)
	assert.Equal(t, "refresh-1", cred.RefreshToken, "refresh token kept when not rotated")
	assert.Equal(t, testScopes, cred.Scopes)
	assert.Equal(t, "access-new", store.cred.AccessToken)

	_, err = m.GetCredentials(context.Background())
	require.NoError(t, err)
	refreshes, _ = oauth.counts()
	assert.Equal(t, 1, refreshes, "refreshed credential is cached")
}

func TestCredentialManager_RefreshFailure(t *testing.T) {
	store := &fakeCredentialStore{cred: expiredCredential()}
	oauth := &fakeOAuthClient{scopes: testScopes, refreshErr: errors.New("invalid_grant")}
	authz := &fakeAuthorizer{code: "code"}
	m := newTestManager(store, oauth, authz)

	_, err := m.GetCredentials(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRefreshFailed)
	assert.Equal(t, domain.KindAuth, domain.KindOf(err))
	assert.Contains(t, err.Error(), "invalid_grant")
	assert.Zero(t, authz.calls, "refresh failure is not retried interactively")
	_, saves := store.counts()
	assert.Zero(t, saves)

	// the next call starts over
	_, err = m.GetCredentials(context.Background())
	require.Error(t, err)
	refreshes, _ := oauth.counts()
	assert.Equal(t, 2, refreshes)
}

func TestCredentialManager_NoCredentialWithoutAuthorizer(t *testing.T) {
	store := &fakeCredentialStore{}
	oauth := &fakeOAuthClient{scopes: testScopes}
	m := newTestManager(store, oauth, nil)

	_, err := m.GetCredentials(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoCredential)
	assert.Equal(t, domain.KindAuth, domain.KindOf(err))
}

func TestCredentialManager_InteractiveFlow(t *testing.T) {
	tests := []struct {
		name  string
		store *fakeCredentialStore
	}{
		{"no stored credential", &fakeCredentialStore{}},
		{"expired without refresh token", &fakeCredentialStore{cred: &domain.Credential{
			AccessToken: "old", Expiry: testNow.Add(-time.Hour), Scopes: testScopes,
		}}},
		{"missing scopes", &fakeCredentialStore{cred: &domain.Credential{
			AccessToken: "old", RefreshToken: "r", Expiry: testNow.Add(time.Hour),
			Scopes: []string{"https://www.googleapis.com/auth/documents"},
		}}},
		{"unreadable store", &fakeCredentialStore{loadErr: errors.New("invalid character")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oauth := &fakeOAuthClient{scopes: testScopes, exchanged: validCredential()}
			authz := &fakeAuthorizer{code: "auth-code"}
			m := newTestManager(tt.store, oauth, authz)

			cred, err := m.GetCredentials(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "access-valid", cred.AccessToken)

			refreshes, exchanges := oauth.counts()
			assert.Zero(t, refreshes)
			assert.Equal(t, 1, exchanges)
			assert.Equal(t, 1, authz.calls)
			assert.Equal(t, "auth-code", oauth.gotCode)
			assert.Equal(t, "http://localhost:8080/", oauth.gotRedirect)
			assert.Equal(t, oauth.urlVerifier, oauth.gotVerifier, "exchange uses the verifier of the auth URL")
			assert.NotEmpty(t, authz.gotState)
			assert.True(t, strings.Contains(authz.gotURL, "state="+authz.gotState))

			_, saves := tt.store.counts()
			assert.Equal(t, 1, saves)
		})
	}
}

func TestCredentialManager_InteractiveFlowFailures(t *testing.T) {
	t.Run("authorizer error", func(t *testing.T) {
		oauth := &fakeOAuthClient{scopes: testScopes}
		m := newTestManager(&fakeCredentialStore{}, oauth, &fakeAuthorizer{err: errors.New("user denied access")})

		_, err := m.GetCredentials(context.Background())
		assert.ErrorIs(t, err, domain.ErrInteractiveFlowFailed)
		assert.Contains(t, err.Error(), "user denied access")
		_, exchanges := oauth.counts()
		assert.Zero(t, exchanges)
	})

	t.Run("exchange error", func(t *testing.T) {
		store := &fakeCredentialStore{}
		oauth := &fakeOAuthClient{scopes: testScopes, exchangeErr: errors.New("invalid code")}
		m := newTestManager(store, oauth, &fakeAuthorizer{code: "c"})

		_, err := m.GetCredentials(context.Background())
		assert.ErrorIs(t, err, domain.ErrInteractiveFlowFailed)
		assert.Equal(t, domain.KindAuth, domain.KindOf(err))
		_, saves := store.counts()
		assert.Zero(t, saves)
	})
}

func TestCredentialManager_SaveFailureKeepsCredential(t *testing.T) {
	store := &fakeCredentialStore{cred: expiredCredential(), saveErr: errors.New("read-only filesystem")}
	oauth := &fakeOAuthClient{scopes: testScopes, refreshed: validCredential()}
	m := newTestManager(store, oauth, nil)

	cred, err := m.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-valid", cred.AccessToken)
}

func TestCredentialManager_ConcurrentRefreshHappensOnce(t *testing.T) {
	store := &fakeCredentialStore{cred: expiredCredential()}
	oauth := &fakeOAuthClient{scopes: testScopes, refreshed: validCredential()}
	m := newTestManager(store, oauth, nil)

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.GetCredentials(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	refreshes, _ := oauth.counts()
	_, saves := store.counts()
	assert.Equal(t, 1, refreshes)
	assert.Equal(t, 1, saves)
}

func TestCredentialManager_ExpiryTriggersRefresh(t *testing.T) {
	store := &fakeCredentialStore{cred: validCredential()}
	oauth := &fakeOAuthClient{scopes: testScopes, refreshed: &domain.Credential{
		AccessToken: "access-later", Expiry: testNow.Add(3 * time.Hour),
	}}
	m := newTestManager(store, oauth, nil)

	_, err := m.GetCredentials(context.Background())
	require.NoError(t, err)

	later := testNow.Add(2 * time.Hour)
	m.now = func() time.Time { return later }
	store.cred = expiredCredential()

	cred, err := m.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-later", cred.AccessToken)
	refreshes, _ := oauth.counts()
	assert.Equal(t, 1, refreshes)
}

func TestCredentialManager_Invalidate(t *testing.T) {
	store := &fakeCredentialStore{cred: validCredential()}
	m := newTestManager(store, &fakeOAuthClient{scopes: testScopes}, nil)

	_, err := m.GetCredentials(context.Background())
	require.NoError(t, err)
	m.Invalidate()
	_, err = m.GetCredentials(context.Background())
	require.NoError(t, err)

	loads, _ := store.counts()
	assert.Equal(t, 2, loads)
}

func TestCredentialManager_Login(t *testing.T) {
	store := &fakeCredentialStore{cred: validCredential()}
	fresh := validCredential()
	fresh.AccessToken = "access-login"
	oauth := &fakeOAuthClient{scopes: testScopes, exchanged: fresh}
	authz := &fakeAuthorizer{code: "c"}
	m := newTestManager(store, oauth, authz)

	cred, err := m.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-login", cred.AccessToken)
	assert.Equal(t, 1, authz.calls)

	got, err := m.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-login", got.AccessToken)
	loads, _ := store.counts()
	assert.Zero(t, loads, "login result is cached")
}
