package core_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ata/internal/core"
	"ata/internal/domain"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceDirs struct {
	config string
	data   string
	home   string
	game   string
}

func newTestService(t *testing.T) (*core.Service, serviceDirs) {
	t.Helper()
	root := t.TempDir()
	dirs := serviceDirs{
		config: filepath.Join(root, "config"),
		data:   filepath.Join(root, "data"),
		home:   filepath.Join(root, "home"),
	}
	dirs.game = domain.DefaultGamePath(dirs.home)
	require.NoError(t, os.MkdirAll(dirs.game, 0755))
	for _, name := range domain.DefaultRequiredFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dirs.game, name), []byte("bin"), 0644))
	}

	svc, err := core.NewService(core.ServiceConfig{
		ConfigDir: dirs.config,
		DataDir:   dirs.data,
		HomeDir:   dirs.home,
	})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc, dirs
}

func TestNewService_Defaults(t *testing.T) {
	svc, dirs := newTestService(t)

	assert.Equal(t, dirs.game, svc.GamePath())
	assert.Empty(t, svc.List())
	assert.Equal(t, dirs.config, svc.ConfigDir())
	assert.Equal(t, filepath.Join(dirs.data, "install-prerequisites.sh"), svc.PrerequisitesScript())
	assert.NoError(t, svc.CheckGame())
	assert.Empty(t, svc.MissingPrerequisites())

	_, err := os.Stat(filepath.Join(dirs.config, "data.json"))
	assert.NoError(t, err, "registry file is created on first start")
}

func TestNewService_CorruptRegistry(t *testing.T) {
	root := t.TempDir()
	configDir := filepath.Join(root, "config")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "data.json"), []byte("{"), 0644))

	_, err := core.NewService(core.ServiceConfig{
		ConfigDir: configDir,
		DataDir:   filepath.Join(root, "data"),
		HomeDir:   root,
		Fs:        afero.NewOsFs(),
	})
	assert.Error(t, err)
}

func TestService_InstallLifecycle(t *testing.T) {
	svc, dirs := newTestService(t)
	archive := createTestZip(t, t.TempDir(), map[string]string{"weapons/wp.dtt": "blade"})

	c, ok, err := svc.Classify(context.Background(), archive)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.WeaponModels, c.Category)
	assert.Empty(t, svc.List(), "classify does not install")

	record, err := svc.Install(context.Background(), archive, core.StaticName("Virtuous Contract"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dirs.game, "data", "wp", "wp.dtt")}, record.Files)

	_, err = svc.SetEnabled("Virtuous Contract", false)
	require.NoError(t, err)
	assert.False(t, svc.List()[0].Enabled)

	history, err := svc.History(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Virtuous Contract", history[0].ModName)

	_, err = svc.Uninstall("1")
	require.NoError(t, err)
	assert.Empty(t, svc.List())

	orphans, err := svc.Orphans()
	require.NoError(t, err)
	assert.Empty(t, orphans)
	cleaned, err := svc.CleanOrphans()
	require.NoError(t, err)
	assert.Empty(t, cleaned)
}

func TestService_ReshadeManifestFromConfig(t *testing.T) {
	root := t.TempDir()
	configDir := filepath.Join(root, "config")
	home := filepath.Join(root, "home")
	game := domain.DefaultGamePath(home)
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"),
		[]byte("reshade_manifest: ReShadePreset.ini\n"), 0644))
	require.NoError(t, os.MkdirAll(game, 0755))
	for _, name := range domain.DefaultRequiredFiles {
		require.NoError(t, os.WriteFile(filepath.Join(game, name), []byte("bin"), 0644))
	}

	svc, err := core.NewService(core.ServiceConfig{
		ConfigDir: configDir,
		DataDir:   filepath.Join(root, "data"),
		HomeDir:   home,
	})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	archive := createTestZip(t, t.TempDir(), map[string]string{
		"preset/ReShadePreset.ini": "[General]",
		"preset/notes.txt":         "clarity",
	})
	record, err := svc.Install(context.Background(), archive, core.StaticName("Clarity"))
	require.NoError(t, err)
	assert.Equal(t, domain.ReshadePreset, record.Category)
	assert.Equal(t, []string{
		filepath.Join(game, "reshade-presets", "ReShadePreset.ini"),
		filepath.Join(game, "reshade-presets", "notes.txt"),
	}, record.Files)
}

func TestService_SetGamePath(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.SetGamePath(t.TempDir())
	assert.ErrorIs(t, err, domain.ErrInvalidGamePath)

	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, domain.ExecutableName), []byte("MZ"), 0644))
	require.NoError(t, svc.SetGamePath(other))
	assert.Equal(t, other, svc.GamePath())

	assert.NotEmpty(t, svc.MissingPrerequisites())
}

func TestService_DetectGamePaths(t *testing.T) {
	svc, dirs := newTestService(t)
	steamapps := filepath.Join(dirs.home, ".local", "share", "Steam", "steamapps")

	assert.Empty(t, svc.DetectGamePaths(), "no manifest, no detection")

	manifest := `"AppState"
{
	"appid"		"524220"
	"installdir"		"NieRAutomata"
}`
	require.NoError(t, os.WriteFile(filepath.Join(steamapps, "appmanifest_524220.acf"), []byte(manifest), 0644))
	assert.Equal(t, []string{dirs.game}, svc.DetectGamePaths())

	require.NoError(t, os.Remove(filepath.Join(dirs.game, domain.ExecutableName)))
	assert.Empty(t, svc.DetectGamePaths(), "install without the executable is skipped")
}

func TestService_InstallPrerequisites(t *testing.T) {
	svc, dirs := newTestService(t)
	require.NoError(t, os.MkdirAll(dirs.data, 0755))
	require.NoError(t, os.WriteFile(svc.PrerequisitesScript(), []byte("#!/bin/bash\necho \"$ATA_GAME_PATH\"\n"), 0755))

	result, err := svc.InstallPrerequisites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dirs.game+"\n", result.Stdout)
}
