package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrelay/internal/adapters/driving/tui"
	"github.com/custodia-labs/docrelay/internal/core/domain"
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Fill in a submission in an interactive form",
	Long: `Open a terminal form for a submission and run it through the pipeline.

Controls:
  Tab/↓, Shift+Tab/↑ - Move between fields
  Enter              - Next field (submits on the last one)
  Ctrl+S             - Submit
  n                  - New submission after a run
  Esc                - Quit`,
	Args: cobra.NoArgs,
	RunE: runFormCmd,
}

var formRecipient string

// runForm drives the form until it exits. Replaced in tests.
var runForm = func(cmd *cobra.Command, app *tui.App) (tea.Model, error) {
	p := tea.NewProgram(app,
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithAltScreen(),
	)
	return p.Run()
}

func init() {
	formCmd.Flags().StringVar(&formRecipient, "recipient", "", "Prefill the recipient field")
	rootCmd.AddCommand(formCmd)
}

func runFormCmd(cmd *cobra.Command, _ []string) error {
	if submissionProcessor == nil {
		return unavailable("submission pipeline")
	}
	if !interactive() {
		return errors.WithHint(errors.New("the form needs an interactive terminal"),
			"use `docrelay submit` with flags instead")
	}

	// The authorizers write to the terminal and read stdin, so any
	// interactive login has to finish before the form owns the screen.
	if credentialService != nil {
		if _, err := credentialService.GetCredentials(cmd.Context()); err != nil {
			return errors.WithHint(errors.Wrap(err, "authorization failed"),
				"run `docrelay auth login` to authorize again")
		}
	}

	app, err := tui.NewApp(&tui.Ports{Submissions: submissionProcessor})
	if err != nil {
		return err
	}
	app.WithContext(cmd.Context()).Prefill(domain.RawSubmission{RecipientEmail: formRecipient})

	final, err := runForm(cmd, app)
	if err != nil {
		return errors.Wrap(err, "running form")
	}

	done, ok := final.(*tui.App)
	if !ok || done.Report() == nil {
		return nil
	}
	report := *done.Report()
	cmd.Println(report.Message)
	cmd.Printf("\nRun ID: %s\n", report.RunID)
	if report.Success {
		return nil
	}
	return submissionError(report)
}
