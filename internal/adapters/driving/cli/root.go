// Package cli implements the docrelay command line.
//
// Commands read their collaborators from package variables that main
// sets through Configure before Execute. A nil collaborator makes the
// commands that need it fail with ConfigErr (or a generic message).
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/docrelay/internal/adapters/driven/google"
	"github.com/custodia-labs/docrelay/internal/core/domain"
	"github.com/custodia-labs/docrelay/internal/core/ports/driven"
	"github.com/custodia-labs/docrelay/internal/core/ports/driving"
	"github.com/custodia-labs/docrelay/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// CredentialService is the credential manager as the CLI sees it.
type CredentialService interface {
	driving.CredentialProvider
	// Login runs the interactive flow unconditionally and persists the result.
	Login(ctx context.Context) (*domain.Credential, error)
}

// TokenInspector verifies an access token with the provider.
type TokenInspector interface {
	Inspect(ctx context.Context, tok *oauth2.Token) (*google.TokenInfo, error)
}

// TokenWatcher calls onChange whenever the stored credential changes on disk.
type TokenWatcher func(ctx context.Context, onChange func()) error

// ServerBuilder builds a pipeline whose credential manager never starts
// an interactive flow, for long-running server modes.
type ServerBuilder func() (driving.SubmissionProcessor, CredentialService, error)

// Services holds everything the commands need.
type Services struct {
	Submissions     driving.SubmissionProcessor
	History         driving.RunHistory
	Credentials     CredentialService
	CredentialStore driven.CredentialStore
	Inspector       TokenInspector
	Config          driven.ConfigStore
	TokenPath       string
	WatchToken      TokenWatcher
	Server          ServerBuilder
	// ConfigErr explains why Submissions and Credentials are unavailable.
	ConfigErr error
}

// Services wired by main.
var (
	submissionProcessor driving.SubmissionProcessor
	runHistory          driving.RunHistory
	credentialService   CredentialService
	credentialStore     driven.CredentialStore
	tokenInspector      TokenInspector
	configStore         driven.ConfigStore
	tokenPath           string
	watchToken          TokenWatcher
	buildServer         ServerBuilder
	configErr           error
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docrelay",
	Short: "Turn form submissions into Google Docs and email them as DOCX",
	Long: `docrelay validates a form submission, writes it into a new Google Doc,
exports the document as DOCX and emails it to a recipient through Gmail.

Credentials are obtained once through an OAuth consent flow and refreshed
automatically afterwards.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Configure installs the collaborators used by the commands.
func Configure(s Services) {
	submissionProcessor = s.Submissions
	runHistory = s.History
	credentialService = s.Credentials
	credentialStore = s.CredentialStore
	tokenInspector = s.Inspector
	configStore = s.Config
	tokenPath = s.TokenPath
	watchToken = s.WatchToken
	buildServer = s.Server
	configErr = s.ConfigErr
}

// SetVersion sets the version reported by `docrelay version`.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// PrintError writes err and any hints attached to it.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if hint := errors.FlattenHints(err); hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}

// unavailable is returned when a command's collaborator is missing.
func unavailable(what string) error {
	if configErr != nil {
		return configErr
	}
	return errors.Newf("%s not configured", what)
}
