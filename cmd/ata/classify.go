package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <archive>",
	Short: "Show what kind of mod an archive holds",
	Long: `Extract an archive to a scratch directory and report the kind of mod it
holds, without installing anything.

Examples:
  ata classify ~/Downloads/2B-HD-Textures.zip`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

type classifyJSONOutput struct {
	Archive   string `json:"archive"`
	Found     bool   `json:"found"`
	Type      string `json:"mod_type,omitempty"`
	ProofFile string `json:"proof_file,omitempty"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	c, found, err := service.Classify(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		result := classifyJSONOutput{Archive: args[0], Found: found}
		if found {
			result.Type = c.Category.String()
			result.ProofFile = c.ProofFile
		}
		return writeJSON(out, result)
	}

	if !found {
		fmt.Fprintf(out, "%s no recognized mod in %s\n", colorYellow("?"), args[0])
		return nil
	}
	fmt.Fprintf(out, "%s (%s)\n", c.Category.Label(), c.Category)
	fmt.Fprintf(out, "  detected by: %s\n", c.ProofFile)
	return nil
}
