package cli

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrelay/internal/core/domain"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Process a form submission",
	Long: `Validate a submission, create a Google Doc from it, export the Doc as
DOCX and email it to the recipient.

Missing fields are prompted for when stdin is a terminal.

Examples:
  docrelay submit --name "Jane Smith" --email jane@example.com \
    --address "1 Oak Ave" --recipient admin@example.com

  # Machine-readable report
  docrelay submit --name Jane --email jane@example.com --address "1 Oak Ave" --json`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

// Flags for submit.
var (
	submitName      string
	submitEmail     string
	submitAddress   string
	submitRecipient string
	submitJSON      bool
)

func init() {
	submitCmd.Flags().StringVar(&submitName, "name", "", "Submitter's full name")
	submitCmd.Flags().StringVar(&submitEmail, "email", "", "Submitter's email address")
	submitCmd.Flags().StringVar(&submitAddress, "address", "", "Submitter's postal address")
	submitCmd.Flags().StringVar(&submitRecipient, "recipient", "", "Recipient of the DOCX (defaults to the fixed recipient)")
	submitCmd.Flags().BoolVar(&submitJSON, "json", false, "Print the run report as JSON")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	if submissionProcessor == nil {
		return unavailable("submission pipeline")
	}

	raw := domain.RawSubmission{
		Name:           submitName,
		Email:          submitEmail,
		Address:        submitAddress,
		RecipientEmail: submitRecipient,
	}
	if interactive() {
		p := newPrompter(cmd.OutOrStdout())
		if raw.Name == "" {
			raw.Name = p.line("Name")
		}
		if raw.Email == "" {
			raw.Email = p.line("Email")
		}
		if raw.Address == "" {
			raw.Address = p.line("Address")
		}
		if raw.RecipientEmail == "" && !cmd.Flags().Changed("recipient") {
			raw.RecipientEmail = p.line("Recipient email (blank for default)")
		}
	}

	report := submissionProcessor.ProcessSubmission(cmd.Context(), raw)

	if submitJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding report")
		}
		cmd.Println(string(data))
	} else {
		cmd.Println(report.Message)
		cmd.Printf("\nRun ID: %s\n", report.RunID)
		if report.ArchiveURI != "" {
			cmd.Printf("Archived: %s\n", report.ArchiveURI)
		}
	}

	if report.Success {
		return nil
	}
	return submissionError(report)
}

func submissionError(r domain.SubmissionReport) error {
	err := errors.Newf("submission failed at %s (%s)", r.FailedStage, r.FailureKind)
	switch r.FailureKind {
	case domain.KindAuth:
		return errors.WithHint(err, "run `docrelay auth login` to authorize again")
	case domain.KindValidation:
		return errors.WithHint(err, "check the submitted fields and try again")
	default:
		return errors.WithHint(err, "see `docrelay history show "+r.RunID+"` for details")
	}
}
