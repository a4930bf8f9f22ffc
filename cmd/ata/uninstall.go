package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <name|index>",
	Short: "Uninstall a mod",
	Long: `Uninstall a mod, deleting every file it installed from the game directory.

The mod can be given by name or by its number in 'ata list'.
Files that were already deleted by hand are skipped.

Examples:
  ata uninstall "2B HD"
  ata uninstall 3`,
	Args: cobra.ExactArgs(1),
	RunE: runUninstall,
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	removed, err := service.Uninstall(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Uninstalled %s (%d files)\n", colorGreen("✓"), removed.Name, len(removed.Files))
	return nil
}
