package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ata/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv is a throwaway home directory with a game installation at the
// default Steam location
type testEnv struct {
	home   string
	config string
	data   string
	game   string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NO_COLOR", "1")
	t.Setenv("STEAM_ROOT", "")

	env := testEnv{
		home:   home,
		config: filepath.Join(home, "config"),
		data:   filepath.Join(home, "data"),
		game:   domain.DefaultGamePath(home),
	}
	require.NoError(t, os.MkdirAll(env.game, 0755))
	for _, name := range domain.DefaultRequiredFiles {
		require.NoError(t, os.WriteFile(filepath.Join(env.game, name), []byte("x"), 0644))
	}
	return env
}

// resetFlags puts every flag of the command tree back to its default, since
// the commands are package globals shared by all tests
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func (e testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", e.config, "--data", e.data}, args...))

	err := rootCmd.Execute()
	return buf.String(), err
}

// archive writes a zip with the given entries into the env's home
func (e testEnv) archive(t *testing.T, name string, files map[string]string) string {
	t.Helper()

	path := filepath.Join(e.home, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for entry, content := range files {
		fw, err := w.Create(entry)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestRootCmd_Structure(t *testing.T) {
	assert.Equal(t, "ata", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotNil(t, rootCmd.RunE, "root launches the interactive menu")

	flags := rootCmd.PersistentFlags()
	for _, name := range []string{"config", "data", "verbose", "json", "no-color"} {
		assert.NotNil(t, flags.Lookup(name), name)
	}
	assert.Equal(t, "v", flags.Lookup("verbose").Shorthand)
}

func TestRootCmd_Subcommands(t *testing.T) {
	for _, path := range [][]string{
		{"install"}, {"uninstall"}, {"list"}, {"enable"}, {"disable"}, {"classify"},
		{"game", "show"}, {"game", "set-path"}, {"game", "detect"}, {"game", "check"},
		{"history"}, {"orphans"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestGetServiceConfig_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	configDir, dataDir = "", ""

	cfg, err := getServiceConfig()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "ATA"), cfg.ConfigDir)
	assert.Equal(t, filepath.Join(home, ".local", "share", "ATA"), cfg.DataDir)
	assert.Equal(t, home, cfg.HomeDir)
	assert.NotNil(t, cfg.Logger)
}

func TestGetServiceConfig_Overrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configDir, dataDir = "/tmp/ata-config", "/tmp/ata-data"
	t.Cleanup(func() { configDir, dataDir = "", "" })

	cfg, err := getServiceConfig()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/ata-config", cfg.ConfigDir)
	assert.Equal(t, "/tmp/ata-data", cfg.DataDir)
}

func TestColorHelpers_RespectNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, "ok", colorGreen("ok"))
	assert.Equal(t, "bad", colorRed("bad"))
	assert.Equal(t, "hm", colorYellow("hm"))

	t.Setenv("NO_COLOR", "")
	noColor = false
	assert.Equal(t, ansiGreen+"ok"+ansiReset, colorGreen("ok"))

	noColor = true
	t.Cleanup(func() { noColor = false })
	assert.Equal(t, "ok", colorGreen("ok"))
}

func TestNewLogger(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	buf := new(bytes.Buffer)

	verbose = false
	logger := newLogger(buf)
	assert.Equal(t, log.InfoLevel, logger.GetLevel())
	logger.Debug("hidden")
	logger.Warn("skipping entry", "path", "a.txt")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "path=a.txt")
	assert.NotContains(t, buf.String(), "\033[", "no ANSI escapes with NO_COLOR")

	verbose = true
	t.Cleanup(func() { verbose = false })
	assert.Equal(t, log.DebugLevel, newLogger(buf).GetLevel())
}
