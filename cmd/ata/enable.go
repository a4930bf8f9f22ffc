package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:   "enable <name|index>",
	Short: "Enable a disabled mod",
	Long: `Enable a disabled mod by restoring its files in the game directory.

Examples:
  ata enable "2B HD"
  ata enable 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetEnabled(cmd, args[0], true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <name|index>",
	Short: "Disable a mod without uninstalling it",
	Long: `Disable a mod. Its files are renamed with a .disabled suffix so the game
ignores them; 'ata enable' puts them back.

Examples:
  ata disable "2B HD"
  ata disable 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetEnabled(cmd, args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}

func runSetEnabled(cmd *cobra.Command, ident string, enabled bool) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	record, err := service.SetEnabled(ident, enabled)
	if err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", colorGreen("✓"), record.Name, state)
	return nil
}
