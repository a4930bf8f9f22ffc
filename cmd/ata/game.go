package main

import (
	"fmt"
	"strings"

	"ata/internal/core"
	"ata/internal/domain"

	"github.com/spf13/cobra"
)

var (
	gameInstallPrereqs bool
	gameDetectSet      bool
)

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Inspect or change the game installation",
	Long: `Inspect or change the NieR:Automata installation ata installs into.

Examples:
  ata game show
  ata game set-path ~/Games/NieRAutomata
  ata game detect --set
  ata game check --install-prereqs`,
}

var gameShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the game directory and its status",
	Args:  cobra.NoArgs,
	RunE:  runGameShow,
}

var gameSetPathCmd = &cobra.Command{
	Use:   "set-path <dir>",
	Short: "Set the game directory",
	Long: `Set the game directory. The directory must contain NieRAutomata.exe.

Examples:
  ata game set-path ~/.local/share/Steam/steamapps/common/NieRAutomata`,
	Args: cobra.ExactArgs(1),
	RunE: runGameSetPath,
}

var gameDetectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Find the game in your Steam libraries",
	Long: `Search the Steam libraries (including extra library folders and $STEAM_ROOT)
for NieR:Automata installations. With --set, the first one found becomes the
game directory.`,
	Args: cobra.NoArgs,
	RunE: runGameDetect,
}

var gameCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the game directory and required modding files",
	Long: `Check that the game directory holds the game and that the files mods
depend on (such as the d3d11.dll injector) are present.

With --install-prereqs, missing files are installed by running the
prerequisite script (by default ~/.local/share/ATA/install-prerequisites.sh).`,
	Args: cobra.NoArgs,
	RunE: runGameCheck,
}

func init() {
	gameCheckCmd.Flags().BoolVar(&gameInstallPrereqs, "install-prereqs", false, "run the prerequisite script when files are missing")

	gameCmd.AddCommand(gameShowCmd)
	gameCmd.AddCommand(gameSetPathCmd)
	gameDetectCmd.Flags().BoolVar(&gameDetectSet, "set", false, "use the first installation found")

	gameCmd.AddCommand(gameDetectCmd)
	gameCmd.AddCommand(gameCheckCmd)
	rootCmd.AddCommand(gameCmd)
}

type gameJSONOutput struct {
	GamePath string   `json:"game_path"`
	Valid    bool     `json:"valid"`
	Missing  []string `json:"missing"`
	Mods     int      `json:"mods"`
}

func gameStatus(service *core.Service) gameJSONOutput {
	status := gameJSONOutput{
		GamePath: service.GamePath(),
		Valid:    service.CheckGame() == nil,
		Missing:  []string{},
		Mods:     len(service.List()),
	}
	if status.Valid {
		if missing := service.MissingPrerequisites(); missing != nil {
			status.Missing = missing
		}
	}
	return status
}

func runGameShow(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	status := gameStatus(service)
	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, status)
	}

	fmt.Fprintf(out, "Game directory: %s\n", status.GamePath)
	if status.Valid {
		fmt.Fprintf(out, "Status:         %s\n", colorGreen("found"))
	} else {
		fmt.Fprintf(out, "Status:         %s\n", colorRed("NieRAutomata.exe not found"))
	}
	fmt.Fprintf(out, "Installed mods: %d\n", status.Mods)
	if verbose {
		fmt.Fprintf(out, "Config:         %s\n", service.ConfigDir())
		fmt.Fprintf(out, "Registry:       %s\n", service.Registry().Path())
	}
	return nil
}

func runGameSetPath(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	if err := service.SetGamePath(args[0]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Game directory set to %s\n", colorGreen("✓"), service.GamePath())
	return nil
}

func runGameDetect(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	found := service.DetectGamePaths()
	out := cmd.OutOrStdout()

	if jsonOutput && !gameDetectSet {
		if found == nil {
			found = []string{}
		}
		return writeJSON(out, map[string][]string{"found": found})
	}

	if len(found) == 0 {
		return domain.NewError(domain.KindInvalidGamePath, "", "no installation found in the Steam libraries", nil)
	}

	if !gameDetectSet {
		for _, dir := range found {
			marker := " "
			if dir == service.GamePath() {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s\n", marker, dir)
		}
		return nil
	}

	if err := service.SetGamePath(found[0]); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s Game directory set to %s\n", colorGreen("✓"), service.GamePath())
	return nil
}

func runGameCheck(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	out := cmd.OutOrStdout()

	if err := service.CheckGame(); err != nil {
		return fmt.Errorf("%w; set it with 'ata game set-path <dir>'", err)
	}

	missing := service.MissingPrerequisites()
	if len(missing) > 0 && gameInstallPrereqs {
		fmt.Fprintf(out, "Running %s...\n", service.PrerequisitesScript())
		result, err := service.InstallPrerequisites(cmd.Context())
		if result != nil && verbose {
			fmt.Fprint(out, result.Stdout)
			fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)
		}
		if err != nil {
			return fmt.Errorf("installing prerequisites: %w", err)
		}
		missing = service.MissingPrerequisites()
	}

	if jsonOutput {
		status := gameStatus(service)
		if err := writeJSON(out, status); err != nil {
			return err
		}
	} else if len(missing) == 0 {
		fmt.Fprintf(out, "%s %s is ready for mods\n", colorGreen("✓"), service.GamePath())
		return nil
	} else {
		fmt.Fprintf(out, "%s required modding files are missing:\n", colorYellow("!"))
		for _, path := range missing {
			fmt.Fprintf(out, "  %s\n", path)
		}
		fmt.Fprintln(out, "Run 'ata game check --install-prereqs' to install them.")
	}

	if len(missing) > 0 {
		return domain.NewError(domain.KindMissingPrerequisites, service.GamePath(), strings.Join(missing, ", "), nil)
	}
	return nil
}
