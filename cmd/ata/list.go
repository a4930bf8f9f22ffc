package main

import (
	"fmt"
	"text/tabwriter"

	"ata/internal/domain"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed mods",
	Long: `List installed mods in the order they were installed.

The number in the first column can be used in place of the name with
uninstall, enable and disable.

Examples:
  ata list
  ata list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	mods := service.List()
	out := cmd.OutOrStdout()

	if jsonOutput {
		if mods == nil {
			mods = []domain.ModRecord{}
		}
		return writeJSON(out, mods)
	}

	if verbose {
		fmt.Fprintf(out, "Game: %s\n\n", service.GamePath())
	}

	if len(mods) == 0 {
		fmt.Fprintln(out, "No mods installed.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tTYPE\tFILES\tENABLED")
	fmt.Fprintln(w, "-\t----\t----\t-----\t-------")

	for i, mod := range mods {
		enabled := "yes"
		if !mod.Enabled {
			enabled = "no"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			i+1,
			truncate(mod.Name, 40),
			mod.Category.Label(),
			len(mod.Files),
			enabled,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(out, "\nTotal: %d mod(s)\n", len(mods))
	}
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
