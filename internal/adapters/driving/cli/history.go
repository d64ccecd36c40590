package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrelay/internal/core/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect previous submission runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show a run report",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

// Flags for history.
var (
	historyLimit int
	historyJSON  bool
)

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to list")
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the report as JSON")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if runHistory == nil {
		return unavailable("run history")
	}

	runs, err := runHistory.List(cmd.Context(), historyLimit)
	if err != nil {
		return errors.Wrap(err, "failed to list runs")
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded yet.")
		return nil
	}

	for i := range runs {
		r := &runs[i]
		status := "ok"
		if !r.Success {
			status = "FAILED " + string(r.FailedStage)
		}
		cmd.Printf("%s  %s  %-28s %s\n", r.RunID, r.StartedAt.Local().Format(time.DateTime), status, r.Recipient)
	}
	cmd.Printf("\nTotal: %d runs\n", len(runs))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if runHistory == nil {
		return unavailable("run history")
	}

	report, err := runHistory.Get(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return errors.Newf("run not found: %s", args[0])
	}
	if err != nil {
		return errors.Wrap(err, "failed to get run")
	}

	if historyJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding report")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	cmd.Printf("Run:          %s\n", report.RunID)
	cmd.Printf("Started:      %s\n", report.StartedAt.Local().Format(time.RFC3339))
	cmd.Printf("Duration:     %s\n", report.Duration().Round(time.Millisecond))
	cmd.Printf("Success:      %s\n", yesNo(report.Success))
	if report.DocumentID != "" {
		cmd.Printf("Document:     %s\n", report.DocumentURL)
	}
	if report.EmailMessageID != "" {
		cmd.Printf("Message ID:   %s\n", report.EmailMessageID)
	}
	if report.Recipient != "" {
		cmd.Printf("Recipient:    %s\n", report.Recipient)
	}
	if !report.Success {
		cmd.Printf("Failed stage: %s\n", report.FailedStage)
		cmd.Printf("Failure kind: %s\n", report.FailureKind)
	}
	if report.ArchiveURI != "" {
		cmd.Printf("Archive:      %s\n", report.ArchiveURI)
	}
	cmd.Printf("\n%s\n", report.Message)
	return nil
}
