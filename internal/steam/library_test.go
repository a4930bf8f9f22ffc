package steam_test

import (
	"path/filepath"
	"testing"

	"ata/internal/steam"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const home = "/home/op"

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

func manifest(appID, installDir string) string {
	return `"AppState"
{
	"appid"		"` + appID + `"
	"name"		"NieR:Automata"
	"installdir"		"` + installDir + `"
}`
}

func TestRoots(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(filepath.Join(home, ".local", "share", "Steam"), 0755))
	require.NoError(t, fs.MkdirAll("/opt/steam", 0755))

	assert.Equal(t, []string{filepath.Join(home, ".local", "share", "Steam")}, steam.Roots(fs, home, ""))
	assert.Equal(t, []string{"/opt/steam", filepath.Join(home, ".local", "share", "Steam")}, steam.Roots(fs, home, "/opt/steam"))
	assert.Empty(t, steam.Roots(afero.NewMemMapFs(), home, "/missing"))
}

func TestLibraries(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := filepath.Join(home, ".steam", "steam")

	t.Run("no libraryfolders file", func(t *testing.T) {
		libs, err := steam.Libraries(fs, root)
		require.NoError(t, err)
		assert.Equal(t, []string{root}, libs)
	})

	t.Run("listed folders", func(t *testing.T) {
		writeFile(t, fs, filepath.Join(root, "steamapps", "libraryfolders.vdf"), `"libraryfolders"
{
	"0" { "path" "`+root+`" }
	"1" { "path" "/mnt/games" }
}`)
		libs, err := steam.Libraries(fs, root)
		require.NoError(t, err)
		assert.Equal(t, []string{root, "/mnt/games"}, libs)
	})

	t.Run("corrupt file", func(t *testing.T) {
		writeFile(t, fs, filepath.Join(root, "steamapps", "libraryfolders.vdf"), `"libraryfolders" {`)
		_, err := steam.Libraries(fs, root)
		assert.Error(t, err)
	})
}

func TestFindApp(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := filepath.Join(home, ".local", "share", "Steam")
	writeFile(t, fs, filepath.Join(root, "steamapps", "libraryfolders.vdf"), `"libraryfolders"
{
	"0" { "path" "`+root+`" }
	"1" { "path" "/mnt/games" }
	"2" { "path" "/mnt/stale" }
}`)
	writeFile(t, fs, filepath.Join("/mnt/games", "steamapps", "appmanifest_524220.acf"), manifest("524220", "NieRAutomata"))
	require.NoError(t, fs.MkdirAll("/mnt/games/steamapps/common/NieRAutomata", 0755))
	// Manifest left behind without the game files
	writeFile(t, fs, filepath.Join("/mnt/stale", "steamapps", "appmanifest_524220.acf"), manifest("524220", "NieRAutomata"))

	found := steam.FindApp(fs, []string{root, root}, "524220")
	assert.Equal(t, []string{"/mnt/games/steamapps/common/NieRAutomata"}, found)

	assert.Empty(t, steam.FindApp(fs, []string{root}, "1"))
}

func TestReadManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/lib/steamapps/appmanifest_524220.acf", manifest("524220", "NieRAutomata"))

	m, err := steam.ReadManifest(fs, "/lib", "524220")
	require.NoError(t, err)
	assert.Equal(t, steam.Manifest{AppID: "524220", Name: "NieR:Automata", InstallDir: "NieRAutomata"}, m)

	_, err = steam.ReadManifest(fs, "/lib", "1")
	assert.Error(t, err)

	writeFile(t, fs, "/lib/steamapps/appmanifest_2.acf", `"Other" { }`)
	_, err = steam.ReadManifest(fs, "/lib", "2")
	assert.Error(t, err)
}
