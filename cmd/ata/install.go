package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"ata/internal/core"
	"ata/internal/domain"

	"github.com/spf13/cobra"
)

var installName string

var installCmd = &cobra.Command{
	Use:   "install <archive>",
	Short: "Install a mod from an archive",
	Long: `Install a mod from a .zip, .7z or .rar archive.

The archive is extracted to a scratch directory, the kind of mod is detected
from the files it contains, and the files are copied into the game directory.
You are asked for a name unless --name is given; the name is how you refer to
the mod later.

Examples:
  ata install ~/Downloads/2B-HD-Textures.zip
  ata install ~/Downloads/bunny-suit.7z --name "Bunny suit"`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVarP(&installName, "name", "n", "", "name for the mod (skips the prompt)")

	rootCmd.AddCommand(installCmd)
}

// linePrompter asks for the mod name on the command's input
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{in: bufio.NewReader(in), out: out}
}

// PromptName implements core.NamePrompter. End of input without an answer
// cancels the install.
func (p *linePrompter) PromptName(ctx context.Context, c core.Classification) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprintf(p.out, "Found a %s (%s).\n", c.Category.Label(), c.ProofFile)
	fmt.Fprint(p.out, "Name for this mod: ")

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading name: %w", err)
	}
	if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
		fmt.Fprintln(p.out)
		return "", core.ErrCancelled
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	out := cmd.OutOrStdout()

	var prompter core.NamePrompter = newLinePrompter(cmd.InOrStdin(), out)
	if cmd.Flags().Changed("name") {
		prompter = core.StaticName(installName)
	}

	if verbose {
		fmt.Fprintf(out, "Installing into %s\n", service.GamePath())
	}

	record, err := service.Install(cmd.Context(), args[0], prompter)
	if err != nil {
		var copyErr *domain.CopyError
		if errors.As(err, &copyErr) && len(copyErr.Copied) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %d files were copied before the failure; remove them with 'ata orphans --clean'\n",
				colorYellow("Warning:"), len(copyErr.Copied))
		}
		return err
	}

	if jsonOutput {
		return writeJSON(out, record)
	}

	fmt.Fprintf(out, "%s Installed %s as a %s (%d files)\n",
		colorGreen("✓"), record.Name, record.Category.Label(), len(record.Files))
	if verbose {
		for _, f := range record.Files {
			fmt.Fprintf(out, "  %s\n", f)
		}
	}
	return nil
}
