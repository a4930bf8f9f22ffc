package core

import (
	"errors"
	"os"
	"path/filepath"

	"ata/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// IsGameInstallation reports whether dir directly contains the game executable.
// Entries that cannot be inspected are logged and skipped.
func IsGameInstallation(fs afero.Fs, dir string, logger *log.Logger) (bool, error) {
	if logger == nil {
		logger = discardLogger()
	}

	f, err := fs.Open(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, domain.NewError(domain.KindInvalidGamePath, dir, "", err)
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		// Not a directory, or unreadable
		return false, nil
	}

	for _, name := range names {
		if name != domain.ExecutableName {
			continue
		}
		info, err := fs.Stat(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("cannot inspect game directory entry", "path", filepath.Join(dir, name), "err", err)
			continue
		}
		if info.Mode().IsRegular() {
			return true, nil
		}
	}
	return false, nil
}

// MissingPrerequisites returns the absolute paths of required files that are
// absent from the game directory, in the order given.
func MissingPrerequisites(fs afero.Fs, gamePath string, required []string) []string {
	var missing []string
	for _, rel := range required {
		path := filepath.Join(gamePath, rel)
		info, err := fs.Stat(path)
		if err != nil || info.IsDir() {
			missing = append(missing, path)
		}
	}
	return missing
}
