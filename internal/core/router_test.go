package core_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ata/internal/core"
	"ata/internal/domain"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGame = "/games/nier"

// failingCreateFs fails to create files whose base name is in failNames
type failingCreateFs struct {
	afero.Fs
	failNames map[string]bool
	failDirs  map[string]bool
}

func (f failingCreateFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&os.O_CREATE != 0 && f.failNames[filepath.Base(name)] {
		return nil, errors.New("no space left on device")
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func (f failingCreateFs) MkdirAll(path string, perm os.FileMode) error {
	if f.failDirs[filepath.Clean(path)] {
		return errors.New("permission denied")
	}
	return f.Fs.MkdirAll(path, perm)
}

func TestRouter_Destination(t *testing.T) {
	r := core.NewRouter(afero.NewMemMapFs())

	tests := []struct {
		category domain.Category
		want     string
	}{
		{domain.Textures, "/games/nier/SK_Res/inject/textures"},
		{domain.PlayerModels, "/games/nier/data/pl"},
		{domain.WeaponModels, "/games/nier/data/wp"},
		{domain.WorldModels, "/games/nier/data/bg"},
		{domain.CutsceneReplacements, "/games/nier/data/movie"},
		{domain.ReshadePreset, "/games/nier/reshade-presets"},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			got, err := r.Destination(tt.category, testGame)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := r.Destination(domain.Category(77), testGame)
	assert.ErrorIs(t, err, domain.ErrDestinationUnavailable)
}

func TestRouter_Destination_PresetOverride(t *testing.T) {
	r := core.NewRouter(afero.NewMemMapFs()).WithReshadePresetDir("reshade-shaders/Presets")
	got, err := r.Destination(domain.ReshadePreset, testGame)
	require.NoError(t, err)
	assert.Equal(t, "/games/nier/reshade-shaders/Presets", got)

	r = core.NewRouter(afero.NewMemMapFs()).WithReshadePresetDir("/srv/presets")
	got, err = r.Destination(domain.ReshadePreset, testGame)
	require.NoError(t, err)
	assert.Equal(t, "/srv/presets", got)
}

func TestRouter_Install(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/scratch/costume/pl.dtt", []byte("dtt"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/scratch/costume/pl.dat", []byte("dat"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/scratch/costume/nested/extra.dat", []byte("x"), 0644))

	record, err := core.NewRouter(fs).Install(context.Background(), domain.PlayerModels, "/scratch/costume", testGame, "2B Outfit")
	require.NoError(t, err)

	assert.Equal(t, "2B Outfit", record.Name)
	assert.Equal(t, domain.PlayerModels, record.Category)
	assert.True(t, record.Enabled)
	assert.Equal(t, []string{"/games/nier/data/pl/pl.dat", "/games/nier/data/pl/pl.dtt"}, record.Files)

	content, err := afero.ReadFile(fs, "/games/nier/data/pl/pl.dtt")
	require.NoError(t, err)
	assert.Equal(t, "dtt", string(content))

	// Subdirectories are not copied
	exists, err := afero.Exists(fs, "/games/nier/data/pl/nested")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRouter_Install_Overwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/games/nier/SK_Res/inject/textures/skin.dss", []byte("old texture"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/scratch/skin.dss", []byte("new"), 0644))

	record, err := core.NewRouter(fs).Install(context.Background(), domain.Textures, "/scratch", testGame, "Skin")
	require.NoError(t, err)
	assert.Equal(t, []string{"/games/nier/SK_Res/inject/textures/skin.dss"}, record.Files)

	content, err := afero.ReadFile(fs, record.Files[0])
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
}

func TestRouter_Install_CopyFailureKeepsPartialFiles(t *testing.T) {
	base := afero.NewMemMapFs()
	for _, name := range []string{"a.usm", "b.usm", "c.usm"} {
		require.NoError(t, afero.WriteFile(base, "/scratch/"+name, []byte(name), 0644))
	}
	fs := failingCreateFs{Fs: base, failNames: map[string]bool{"b.usm": true}}

	record, err := core.NewRouter(fs).Install(context.Background(), domain.CutsceneReplacements, "/scratch", testGame, "Movies")
	require.Error(t, err)
	assert.Nil(t, record)

	var copyErr *domain.CopyError
	require.ErrorAs(t, err, &copyErr)
	assert.Equal(t, "/scratch/b.usm", copyErr.File)
	assert.Equal(t, []string{"/games/nier/data/movie/a.usm"}, copyErr.Copied)
	assert.ErrorIs(t, err, domain.ErrCopyFailure)
	assert.Contains(t, err.Error(), "b.usm")

	exists, err := afero.Exists(base, "/games/nier/data/movie/a.usm")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = afero.Exists(base, "/games/nier/data/movie/c.usm")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRouter_Install_DestinationUnavailable(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/scratch/wp.dat", []byte("wp"), 0644))
	fs := failingCreateFs{Fs: base, failDirs: map[string]bool{"/games/nier/data/wp": true}}

	_, err := core.NewRouter(fs).Install(context.Background(), domain.WeaponModels, "/scratch", testGame, "Blade")
	assert.ErrorIs(t, err, domain.ErrDestinationUnavailable)
}

func TestRouter_Install_MissingSource(t *testing.T) {
	_, err := core.NewRouter(afero.NewMemMapFs()).Install(context.Background(), domain.Textures, "/scratch", testGame, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRouter_Install_EmptySource(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/scratch/only-dirs/sub", 0755))

	_, err := core.NewRouter(fs).Install(context.Background(), domain.Textures, "/scratch/only-dirs", testGame, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	record, err := core.NewRouter(fs).Install(context.Background(), domain.ReshadePreset, "/scratch/only-dirs", testGame, "preset")
	require.NoError(t, err)
	assert.Empty(t, record.Files)
}

func TestRouter_Install_Cancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/scratch/a.dss", []byte("a"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := core.NewRouter(fs).Install(ctx, domain.Textures, "/scratch", testGame, "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, domain.ErrCopyFailure)
}
