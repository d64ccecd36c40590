package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/docrelay/internal/adapters/driven/google"
	"github.com/custodia-labs/docrelay/internal/core/domain"
)

// fakeProcessor is a mock implementation of driving.SubmissionProcessor.
type fakeProcessor struct {
	report domain.SubmissionReport
	got    *domain.RawSubmission
}

func (f *fakeProcessor) ProcessSubmission(_ context.Context, raw domain.RawSubmission) domain.SubmissionReport {
	f.got = &raw
	return f.report
}

// fakeHistory is a mock implementation of driving.RunHistory.
type fakeHistory struct {
	reports  []domain.SubmissionReport
	err      error
	gotLimit int
}

func (f *fakeHistory) Get(_ context.Context, runID string) (*domain.SubmissionReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.reports {
		if f.reports[i].RunID == runID {
			return &f.reports[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeHistory) List(_ context.Context, limit int) ([]domain.SubmissionReport, error) {
	f.gotLimit = limit
	return f.reports, f.err
}

// fakeCredentials is a mock CredentialService.
type fakeCredentials struct {
	cred          *domain.Credential
	err           error
	gets          int
	logins        int
	invalidations int
}

func (f *fakeCredentials) GetCredentials(context.Context) (*domain.Credential, error) {
	f.gets++
	return f.cred, f.err
}

func (f *fakeCredentials) Login(context.Context) (*domain.Credential, error) {
	f.logins++
	return f.cred, f.err
}

func (f *fakeCredentials) Invalidate() {
	f.invalidations++
}

// fakeCredentialStore is a mock driven.CredentialStore.
type fakeCredentialStore struct {
	cred *domain.Credential
	err  error
}

func (f *fakeCredentialStore) Load(context.Context) (*domain.Credential, error) {
	return f.cred, f.err
}

func (f *fakeCredentialStore) Save(_ context.Context, cred *domain.Credential) error {
	f.cred = cred
	return nil
}

// fakeInspector is a mock TokenInspector.
type fakeInspector struct {
	info *google.TokenInfo
	err  error
	got  *oauth2.Token
}

func (f *fakeInspector) Inspect(_ context.Context, tok *oauth2.Token) (*google.TokenInfo, error) {
	f.got = tok
	return f.info, f.err
}

// withServices installs s for the duration of the test.
func withServices(t *testing.T, s Services) {
	t.Helper()
	Configure(s)
	t.Cleanup(func() { Configure(Services{}) })
}

// withInput replaces stdin and the terminal check.
func withInput(t *testing.T, input string, tty bool) {
	t.Helper()
	oldStdin, oldInteractive := stdin, interactive
	stdin = strings.NewReader(input)
	interactive = func() bool { return tty }
	t.Cleanup(func() {
		stdin, interactive = oldStdin, oldInteractive
	})
}

// execute runs the root command with args and returns everything printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so tests do not leak
// values into each other through the shared command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
