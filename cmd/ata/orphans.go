package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var orphansClean bool

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "List files left behind by failed installs",
	Long: `List files that a failed install copied into the game directory but that no
installed mod owns. Use --clean to delete them.

Examples:
  ata orphans
  ata orphans --clean`,
	Args: cobra.NoArgs,
	RunE: runOrphans,
}

func init() {
	orphansCmd.Flags().BoolVar(&orphansClean, "clean", false, "delete the orphaned files")

	rootCmd.AddCommand(orphansCmd)
}

type orphanJSON struct {
	Path       string    `json:"path"`
	AttemptID  string    `json:"attempt_id"`
	RecordedAt time.Time `json:"recorded_at"`
}

func runOrphans(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	out := cmd.OutOrStdout()

	if orphansClean {
		removed, err := service.CleanOrphans()
		if jsonOutput && err == nil {
			if removed == nil {
				removed = []string{}
			}
			return writeJSON(out, map[string][]string{"removed": removed})
		}
		for _, path := range removed {
			fmt.Fprintf(out, "removed %s\n", path)
		}
		if err != nil {
			return fmt.Errorf("cleaning orphaned files: %w", err)
		}
		fmt.Fprintf(out, "%s %d orphaned file(s) removed\n", colorGreen("✓"), len(removed))
		return nil
	}

	orphans, err := service.Orphans()
	if err != nil {
		return fmt.Errorf("reading orphaned files: %w", err)
	}

	if jsonOutput {
		result := make([]orphanJSON, 0, len(orphans))
		for _, o := range orphans {
			result = append(result, orphanJSON(o))
		}
		return writeJSON(out, result)
	}

	if len(orphans) == 0 {
		fmt.Fprintln(out, "No orphaned files.")
		return nil
	}
	for _, o := range orphans {
		fmt.Fprintln(out, o.Path)
	}
	fmt.Fprintf(out, "\n%d orphaned file(s); run 'ata orphans --clean' to delete them\n", len(orphans))
	return nil
}
