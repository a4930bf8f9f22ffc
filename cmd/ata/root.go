package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ata/internal/core"
	"ata/internal/tui"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var (
	version = "0.3.0"

	// Global flags
	configDir  string
	dataDir    string
	verbose    bool
	jsonOutput bool
	noColor    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ata",
	Short: "ATA - NieR:Automata mod manager for Linux",
	Long: `ata installs NieR:Automata mods from .zip, .7z and .rar archives.

It works out what kind of mod an archive holds (texture pack, player, weapon
or world model, cutscene replacement), copies the files where the game
expects them and keeps track of what was installed so it can be removed later.

Run without a subcommand to open the interactive menu.`,
	Version:       version,
	SilenceUsage:  true, // Runtime errors should not print usage
	SilenceErrors: true, // We handle error output in Execute()
	RunE:          runInteractive,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.config/ATA)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default: ~/.local/share/ATA)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format (install, list, classify, game, history, orphans)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// colorEnabled returns true if colored output should be used (respects --no-color and NO_COLOR env).
// NO_COLOR: if set (any value), color is disabled per https://no-color.org
func colorEnabled() bool {
	if noColor {
		return false
	}
	return os.Getenv("NO_COLOR") == ""
}

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
)

// colorGreen returns s with green ANSI when color is enabled, otherwise s.
func colorGreen(s string) string {
	if !colorEnabled() {
		return s
	}
	return ansiGreen + s + ansiReset
}

// colorRed returns s with red ANSI when color is enabled, otherwise s.
func colorRed(s string) string {
	if !colorEnabled() {
		return s
	}
	return ansiRed + s + ansiReset
}

// colorYellow returns s with yellow ANSI when color is enabled, otherwise s.
func colorYellow(s string) string {
	if !colorEnabled() {
		return s
	}
	return ansiYellow + s + ansiReset
}

// Execute runs the root command. Exit codes: 0 = success, 1 = error, 2 = user cancelled.
// When --json is set and an error occurs, prints {"error":"..."} to stdout before exiting.
// Cancellation exits with code 2 without printing JSON, since it is a user action, not an error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, core.ErrCancelled) {
			os.Exit(2)
		}
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// newLogger builds the diagnostics logger. Diagnostics go to stderr so they
// never mix with command output.
func newLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "ata"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	if !colorEnabled() {
		logger.SetColorProfile(termenv.Ascii)
	}
	return logger
}

// initService creates and initializes the core service
func initService() (*core.Service, error) {
	cfg, err := getServiceConfig()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.ConfigDir, 0755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}

	return core.NewService(cfg)
}

// getServiceConfig returns the service configuration with defaults.
// Returns an error if UserHomeDir fails and defaults are needed.
func getServiceConfig() (core.ServiceConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return core.ServiceConfig{}, fmt.Errorf("home directory: %w", err)
	}

	cfg := core.ServiceConfig{
		ConfigDir: configDir,
		DataDir:   dataDir,
		HomeDir:   homeDir,
		SteamRoot: os.Getenv("STEAM_ROOT"),
		Logger:    newLogger(os.Stderr),
	}

	if cfg.ConfigDir == "" {
		cfg.ConfigDir = filepath.Join(homeDir, ".config", "ATA")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(homeDir, ".local", "share", "ATA")
	}

	return cfg, nil
}

// writeJSON prints v as indented JSON
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return cmd.Help()
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	if err := service.CheckGame(); err != nil {
		if found := service.DetectGamePaths(); len(found) > 0 {
			return fmt.Errorf("%w; the game was found at %s, use it with 'ata game detect --set'", err, found[0])
		}
		return fmt.Errorf("%w; point ata at your game with 'ata game set-path <dir>'", err)
	}
	if missing := service.MissingPrerequisites(); len(missing) > 0 {
		cmd.PrintErrln(colorYellow("Warning:"), "required modding files are missing:")
		for _, path := range missing {
			cmd.PrintErrf("  %s\n", path)
		}
		cmd.PrintErrln("Run 'ata game check --install-prereqs' to install them.")
		return nil
	}

	return tui.Run(service, service.Config().Keybindings)
}
