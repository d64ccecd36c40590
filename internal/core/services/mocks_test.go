package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/docrelay/internal/core/domain"
)

// Stage stubs

type stubCreator struct {
	calls     atomic.Int32
	ref       domain.DocumentRef
	err       error
	block     bool
	panicWith any
}

func (s *stubCreator) Create(ctx context.Context, _ domain.Submission) (domain.DocumentRef, error) {
	s.calls.Add(1)
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	if s.block {
		<-ctx.Done()
		return domain.DocumentRef{}, ctx.Err()
	}
	return s.ref, s.err
}

type stubExporter struct {
	calls     atomic.Int32
	file      domain.ExportedDocument
	err       error
	panicWith any
}

func (s *stubExporter) Export(_ context.Context, _ domain.DocumentRef) (domain.ExportedDocument, error) {
	s.calls.Add(1)
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	return s.file, s.err
}

type stubSender struct {
	calls atomic.Int32
	id    string
	err   error
}

func (s *stubSender) Send(
	_ context.Context,
	sub domain.Submission,
	_ domain.DocumentRef,
	_ domain.ExportedDocument,
) (domain.SentMessage, error) {
	s.calls.Add(1)
	if s.err != nil {
		return domain.SentMessage{}, s.err
	}
	return domain.SentMessage{ID: s.id, Recipient: sub.RecipientEmail}, nil
}

// stubCredentials is a CredentialProvider with a fixed outcome.
type stubCredentials struct {
	calls atomic.Int32
	err   error
}

func (s *stubCredentials) GetCredentials(_ context.Context) (*domain.Credential, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Credential{AccessToken: "access"}, nil
}

func (s *stubCredentials) Invalidate() {}

// mockRunStore is an in-memory RunStore.
type mockRunStore struct {
	mu      sync.Mutex
	reports []domain.SubmissionReport
	err     error
}

func (m *mockRunStore) Record(_ context.Context, report domain.SubmissionReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.reports = append(m.reports, report)
	return nil
}

func (m *mockRunStore) Get(_ context.Context, runID string) (*domain.SubmissionReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.reports {
		if m.reports[i].RunID == runID {
			r := m.reports[i]
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRunStore) List(_ context.Context, limit int) ([]domain.SubmissionReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SubmissionReport, 0, len(m.reports))
	for i := len(m.reports) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.reports[i])
	}
	return out, nil
}

// mockArchive records uploads.
type mockArchive struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (m *mockArchive) Put(_ context.Context, name string, _ []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = append(m.names, name)
	if m.err != nil {
		return "", m.err
	}
	return "gs://bucket/" + name, nil
}

// Credential fakes

type fakeCredentialStore struct {
	mu      sync.Mutex
	cred    *domain.Credential
	loadErr error
	saveErr error
	loads   int
	saves   int
}

func (s *fakeCredentialStore) Load(_ context.Context) (*domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.cred == nil {
		return nil, domain.ErrNoCredential
	}
	return s.cred.Clone(), nil
}

func (s *fakeCredentialStore) Save(_ context.Context, cred *domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.cred = cred.Clone()
	return nil
}

func (s *fakeCredentialStore) counts() (loads, saves int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads, s.saves
}

type fakeOAuthClient struct {
	mu          sync.Mutex
	scopes      []string
	refreshed   *domain.Credential
	refreshErr  error
	exchanged   *domain.Credential
	exchangeErr error
	refreshes   int
	exchanges   int
	gotCode     string
	gotVerifier string
	gotRedirect string
	urlVerifier string
}

func (c *fakeOAuthClient) AuthCodeURL(state, verifier, redirectURI string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urlVerifier = verifier
	return "https://auth.example/authorize?state=" + state + "&redirect_uri=" + redirectURI
}

func (c *fakeOAuthClient) Exchange(_ context.Context, code, verifier, redirectURI string) (*domain.Credential, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exchanges++
	c.gotCode, c.gotVerifier, c.gotRedirect = code, verifier, redirectURI
	if c.exchangeErr != nil {
		return nil, c.exchangeErr
	}
	return c.exchanged.Clone(), nil
}

func (c *fakeOAuthClient) Refresh(_ context.Context, _ *domain.Credential) (*domain.Credential, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshes++
	if c.refreshErr != nil {
		return nil, c.refreshErr
	}
	return c.refreshed.Clone(), nil
}

func (c *fakeOAuthClient) Scopes() []string {
	return c.scopes
}

func (c *fakeOAuthClient) counts() (refreshes, exchanges int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshes, c.exchanges
}

type fakeAuthorizer struct {
	mu       sync.Mutex
	code     string
	err      error
	calls    int
	gotURL   string
	gotState string
}

func (a *fakeAuthorizer) RedirectURI() string {
	return "http://localhost:8080/"
}

func (a *fakeAuthorizer) Authorize(_ context.Context, authURL, state string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.gotURL, a.gotState = authURL, state
	if a.err != nil {
		return "", a.err
	}
	return a.code, nil
}

// Driven service fakes

type insertCall struct {
	documentID string
	text       string
	index      int64
}

type fakeDocumentService struct {
	id        string
	createErr error
	insertErr error
	moveErr   error
	titles    []string
	inserts   []insertCall
	moves     []string
}

func (f *fakeDocumentService) CreateDocument(_ context.Context, title string) (string, error) {
	f.titles = append(f.titles, title)
	return f.id, f.createErr
}

func (f *fakeDocumentService) InsertText(_ context.Context, documentID, text string, index int64) error {
	f.inserts = append(f.inserts, insertCall{documentID, text, index})
	return f.insertErr
}

func (f *fakeDocumentService) MoveToFolder(_ context.Context, documentID, folderID string) error {
	f.moves = append(f.moves, documentID+"->"+folderID)
	return f.moveErr
}

type fakeExportService struct {
	content  []byte
	err      error
	gotMIME  string
	gotDocID string
}

func (f *fakeExportService) Export(_ context.Context, documentID, mimeType string) ([]byte, error) {
	f.gotDocID, f.gotMIME = documentID, mimeType
	return f.content, f.err
}

type fakeVerifier struct {
	err error
	got []byte
}

func (f *fakeVerifier) Verify(content []byte) error {
	f.got = content
	return f.err
}

type fakeMailService struct {
	id        string
	err       error
	gotRaw    []byte
	gotSender string
}

func (f *fakeMailService) Send(_ context.Context, raw []byte, sender string) (string, error) {
	f.gotRaw, f.gotSender = raw, sender
	return f.id, f.err
}
