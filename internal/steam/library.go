// Package steam finds games installed through Steam by reading the library
// metadata Steam keeps on disk.
package steam

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Roots returns the Steam installation directories that exist under home, in
// search order. An explicit root (e.g. from $STEAM_ROOT) is tried first.
func Roots(fs afero.Fs, home, explicit string) []string {
	candidates := []string{
		filepath.Join(home, ".steam", "steam"),
		filepath.Join(home, ".local", "share", "Steam"),
		filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".local", "share", "Steam"),
	}
	if explicit != "" {
		candidates = append([]string{explicit}, candidates...)
	}

	var roots []string
	for _, p := range candidates {
		if ok, _ := afero.DirExists(fs, p); ok {
			roots = append(roots, p)
		}
	}
	return roots
}

// Libraries returns the library folders registered in a Steam root. A root
// without libraryfolders.vdf is its own single library.
func Libraries(fs afero.Fs, root string) ([]string, error) {
	f, err := fs.Open(filepath.Join(root, "steamapps", "libraryfolders.vdf"))
	if errors.Is(err, os.ErrNotExist) {
		return []string{root}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening libraryfolders: %w", err)
	}
	defer f.Close()

	doc, err := ParseKeyValues(f)
	if err != nil {
		return nil, fmt.Errorf("parsing libraryfolders: %w", err)
	}

	folders, ok := doc.Block("libraryfolders")
	if !ok {
		return []string{root}, nil
	}
	var libs []string
	for i := 0; ; i++ {
		entry, ok := folders.Block(fmt.Sprint(i))
		if !ok {
			break
		}
		if p := entry.String("path"); p != "" {
			libs = append(libs, p)
		}
	}
	if len(libs) == 0 {
		return []string{root}, nil
	}
	return libs, nil
}

// Manifest is the part of an appmanifest_<id>.acf file needed to locate a game
type Manifest struct {
	AppID      string
	Name       string
	InstallDir string
}

// ReadManifest reads the manifest of appID from a library. It returns
// os.ErrNotExist when the library does not hold the app.
func ReadManifest(fs afero.Fs, library, appID string) (Manifest, error) {
	f, err := fs.Open(filepath.Join(library, "steamapps", "appmanifest_"+appID+".acf"))
	if err != nil {
		return Manifest{}, err
	}
	defer f.Close()

	doc, err := ParseKeyValues(f)
	if err != nil {
		return Manifest{}, err
	}
	state, ok := doc.Block("AppState")
	if !ok {
		return Manifest{}, fmt.Errorf("vdf: missing AppState")
	}
	return Manifest{
		AppID:      state.String("appid"),
		Name:       state.String("name"),
		InstallDir: state.String("installdir"),
	}, nil
}

// FindApp returns every install directory of appID across all Steam roots
// and libraries, without duplicates. Libraries that cannot be read are skipped.
func FindApp(fs afero.Fs, roots []string, appID string) []string {
	seen := make(map[string]bool)
	var found []string

	for _, root := range roots {
		libs, err := Libraries(fs, root)
		if err != nil {
			continue
		}
		for _, lib := range libs {
			m, err := ReadManifest(fs, lib, appID)
			if err != nil || m.InstallDir == "" {
				continue
			}
			dir := filepath.Join(lib, "steamapps", "common", m.InstallDir)
			if seen[dir] {
				continue
			}
			if ok, _ := afero.DirExists(fs, dir); !ok {
				continue
			}
			seen[dir] = true
			found = append(found, dir)
		}
	}
	return found
}
