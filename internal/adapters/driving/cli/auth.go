package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrelay/internal/adapters/driven/google"
	"github.com/custodia-labs/docrelay/internal/core/domain"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Google credential",
	Long: `Authorize docrelay against a Google account and inspect the stored credential.

The credential is kept in a token file (default ~/.docrelay/token.json) in
the same format Google's client libraries use. In headless deployments set
GOOGLE_TOKEN_JSON to the output of 'docrelay auth export' instead.

Examples:
  # Authorize in a browser and save the token
  docrelay auth login

  # Show what is stored
  docrelay auth status

  # Verify the token against Google
  docrelay auth check`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize with Google and save the token",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored credential",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the stored credential as JSON",
	Long: `Print the stored credential as JSON, suitable for GOOGLE_TOKEN_JSON.

The output contains the refresh token. Treat it like a password.`,
	Args: cobra.NoArgs,
	RunE: runAuthExport,
}

var authCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the credential with Google",
	Args:  cobra.NoArgs,
	RunE:  runAuthCheck,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authExportCmd)
	authCmd.AddCommand(authCheckCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if credentialService == nil {
		return unavailable("credential manager")
	}

	cred, err := credentialService.Login(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "authorization failed")
	}

	cmd.Println("Authorization complete.")
	if tokenPath != "" {
		cmd.Printf("Token saved to %s\n", tokenPath)
	}
	if !cred.CanRefresh() {
		cmd.Println("Warning: no refresh token was issued; you will need to log in again when it expires.")
	}
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if credentialStore == nil {
		return unavailable("credential store")
	}

	cred, err := credentialStore.Load(cmd.Context())
	if errors.Is(err, domain.ErrNoCredential) {
		cmd.Printf("No credential stored at %s\n", tokenPath)
		cmd.Println("Run 'docrelay auth login' to authorize.")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "loading credential")
	}

	now := time.Now()
	cmd.Printf("Token file:    %s\n", tokenPath)
	cmd.Printf("Access token:  %s\n", maskSecret(cred.AccessToken))
	cmd.Printf("Expiry:        %s\n", describeExpiry(cred, now))
	cmd.Printf("Refreshable:   %s\n", yesNo(cred.CanRefresh()))
	if len(cred.Scopes) > 0 {
		cmd.Printf("Scopes:        %s\n", strings.Join(cred.Scopes, "\n               "))
	}
	if !cred.HasScopes(google.Scopes) {
		cmd.Println("\nThe credential is missing required scopes; the next run will ask for consent again.")
	}
	return nil
}

func runAuthExport(cmd *cobra.Command, _ []string) error {
	if credentialStore == nil {
		return unavailable("credential store")
	}

	cred, err := credentialStore.Load(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "loading credential")
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return errors.Wrap(err, "encoding credential")
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	fmt.Fprintln(cmd.ErrOrStderr(), "Set this as GOOGLE_TOKEN_JSON. It contains your refresh token; keep it secret.")
	return nil
}

func runAuthCheck(cmd *cobra.Command, _ []string) error {
	if credentialService == nil {
		return unavailable("credential manager")
	}
	if tokenInspector == nil {
		return unavailable("token inspector")
	}

	tok, err := google.NewTokenSource(cmd.Context(), credentialService).Token()
	if err != nil {
		return errors.Wrap(err, "obtaining credential")
	}

	info, err := tokenInspector.Inspect(cmd.Context(), tok)
	if err != nil {
		return errors.Wrap(err, "token check failed")
	}

	cmd.Println("Credential is valid.")
	if info.Email != "" {
		cmd.Printf("Account:     %s\n", info.Email)
	}
	cmd.Printf("Expires in:  %s\n", info.ExpiresIn.Round(time.Second))

	granted := make(map[string]bool, len(info.Scopes))
	for _, s := range info.Scopes {
		granted[s] = true
	}
	var missing []string
	for _, s := range google.Scopes {
		status := "ok"
		if !granted[s] {
			status = "MISSING"
			missing = append(missing, s)
		}
		cmd.Printf("  %-8s %s\n", status, s)
	}
	if len(missing) > 0 {
		return errors.WithHint(
			errors.Newf("credential lacks %d required scope(s)", len(missing)),
			"run `docrelay auth login` to grant them")
	}
	return nil
}

func describeExpiry(cred *domain.Credential, now time.Time) string {
	if cred.Expiry.IsZero() {
		return "never"
	}
	local := cred.Expiry.Local().Format(time.RFC3339)
	if cred.Expired(now) {
		return local + " (expired)"
	}
	return fmt.Sprintf("%s (in %s)", local, cred.Expiry.Sub(now).Round(time.Second))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
