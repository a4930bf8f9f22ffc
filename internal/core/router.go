package core

import (
	"context"
	"fmt"
	"path/filepath"

	"ata/internal/domain"
	"ata/internal/linker"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// DefaultReshadePresetDir is where presets go, relative to the game directory
const DefaultReshadePresetDir = "reshade-presets"

var categoryDirs = map[domain.Category]string{
	domain.Textures:             filepath.Join("SK_Res", "inject", "textures"),
	domain.PlayerModels:         filepath.Join("data", "pl"),
	domain.WeaponModels:         filepath.Join("data", "wp"),
	domain.WorldModels:          filepath.Join("data", "bg"),
	domain.CutsceneReplacements: filepath.Join("data", "movie"),
}

// Router copies a classified mod's files to the game directory for its category
type Router struct {
	fs        afero.Fs
	linker    linker.Linker
	presetDir string
	logger    *log.Logger
}

// NewRouter creates a router that copies files through the given filesystem
func NewRouter(fs afero.Fs) *Router {
	return &Router{
		fs:        fs,
		linker:    linker.NewCopy(fs),
		presetDir: DefaultReshadePresetDir,
		logger:    discardLogger(),
	}
}

// WithReshadePresetDir overrides the preset destination. Relative paths are
// resolved against the game directory.
func (r *Router) WithReshadePresetDir(dir string) *Router {
	if dir != "" {
		r.presetDir = dir
	}
	return r
}

// WithLogger sets the logger used while copying
func (r *Router) WithLogger(l *log.Logger) *Router {
	if l != nil {
		r.logger = l
	}
	return r
}

// Destination returns the directory a category installs into
func (r *Router) Destination(category domain.Category, gamePath string) (string, error) {
	if category == domain.ReshadePreset {
		if filepath.IsAbs(r.presetDir) {
			return r.presetDir, nil
		}
		return filepath.Join(gamePath, r.presetDir), nil
	}

	dir, ok := categoryDirs[category]
	if !ok {
		return "", domain.NewError(domain.KindDestinationUnavailable, "", fmt.Sprintf("no destination for %s", category), nil)
	}
	return filepath.Join(gamePath, dir), nil
}

// Install copies every regular file directly inside sourceDir to the category's
// destination, overwriting files of the same name, and returns the record
// describing what was written. Subdirectories are not copied. On the first copy
// failure it returns a *domain.CopyError listing the files already written;
// those files are left in place.
func (r *Router) Install(ctx context.Context, category domain.Category, sourceDir, gamePath, name string) (*domain.ModRecord, error) {
	dest, err := r.Destination(category, gamePath)
	if err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(r.fs, sourceDir)
	if err != nil {
		return nil, domain.NewError(domain.KindNotFound, sourceDir, "", err)
	}

	var sources []string
	for _, entry := range entries {
		if entry.Mode().IsRegular() {
			sources = append(sources, filepath.Join(sourceDir, entry.Name()))
		}
	}
	if len(sources) == 0 && category.RequiresFiles() {
		return nil, domain.NewError(domain.KindNotFound, sourceDir, "no files to install", nil)
	}

	if err := r.fs.MkdirAll(dest, 0755); err != nil {
		return nil, domain.NewError(domain.KindDestinationUnavailable, dest, "", err)
	}

	copied := make([]string, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, &domain.CopyError{File: src, Copied: copied, Err: err}
		}

		dst := filepath.Join(dest, filepath.Base(src))
		if err := r.linker.Deploy(src, dst); err != nil {
			return nil, &domain.CopyError{File: src, Copied: copied, Err: err}
		}
		r.logger.Debug("copied mod file", "src", src, "dst", dst)
		copied = append(copied, dst)
	}

	return domain.NewModRecord(name, category, copied), nil
}
