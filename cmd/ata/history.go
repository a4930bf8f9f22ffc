package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"ata/internal/storage/db"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent install attempts",
	Long: `Show recent install attempts, newest first, including failed ones and the
step at which they failed.

Examples:
  ata history
  ata history --limit 50`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "number of attempts to show (0 for all)")

	rootCmd.AddCommand(historyCmd)
}

type attemptJSON struct {
	ID          string    `json:"id"`
	Archive     string    `json:"archive"`
	Name        string    `json:"name,omitempty"`
	Type        string    `json:"mod_type,omitempty"`
	Outcome     string    `json:"outcome"`
	FailedState string    `json:"failed_state,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	attempts, err := service.History(historyLimit)
	if err != nil {
		return fmt.Errorf("reading install history: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		result := make([]attemptJSON, 0, len(attempts))
		for _, a := range attempts {
			result = append(result, attemptJSON{
				ID:          a.ID,
				Archive:     a.ArchivePath,
				Name:        a.ModName,
				Type:        a.ModType,
				Outcome:     a.Outcome,
				FailedState: a.FailedState,
				Reason:      a.Reason,
				StartedAt:   a.StartedAt,
				FinishedAt:  a.FinishedAt,
			})
		}
		return writeJSON(out, result)
	}

	if len(attempts) == 0 {
		fmt.Fprintln(out, "No install attempts recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tARCHIVE\tNAME\tRESULT")
	fmt.Fprintln(w, "----\t-------\t----\t------")
	for _, a := range attempts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			a.StartedAt.Local().Format("2006-01-02 15:04"),
			truncate(a.ArchivePath, 50),
			a.ModName,
			outcomeText(a),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if verbose {
		for _, a := range attempts {
			if a.Outcome == db.OutcomeFailed && a.Reason != "" {
				fmt.Fprintf(out, "\n%s: %s", a.ID, a.Reason)
			}
		}
		fmt.Fprintln(out)
	}
	return nil
}

func outcomeText(a *db.Attempt) string {
	if a.Outcome == db.OutcomeRecorded {
		return colorGreen("installed")
	}
	return colorRed(fmt.Sprintf("failed while %s", strings.ToLower(a.FailedState)))
}
