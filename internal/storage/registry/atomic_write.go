package registry

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

const defaultFileMode os.FileMode = 0o644

// writeFileAtomic replaces targetPath with data so readers see either the old
// document or the new one, never a truncated file.
func writeFileAtomic(fs afero.Fs, targetPath string, data []byte) error {
	tempPath, err := nextSiblingPath(fs, targetPath, ".tmp")
	if err != nil {
		return err
	}

	if err := afero.WriteFile(fs, tempPath, data, defaultFileMode); err != nil {
		return cleanupTemp(fs, tempPath, err)
	}

	exists, err := afero.Exists(fs, targetPath)
	if err != nil {
		return cleanupTemp(fs, tempPath, err)
	}
	if !exists {
		if err := fs.Rename(tempPath, targetPath); err != nil {
			return cleanupTemp(fs, tempPath, err)
		}
		return nil
	}

	return replaceExisting(fs, tempPath, targetPath)
}

func nextSiblingPath(fs afero.Fs, targetPath, suffix string) (string, error) {
	base := targetPath + ".ata" + suffix

	candidate := base
	for i := 0; i < 100; i++ {
		exists, err := afero.Exists(fs, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s.%d", base, i+1)
	}

	return "", errors.New("cannot allocate sibling path")
}

func removeIfExists(fs afero.Fs, path string) error {
	if err := fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func cleanupTemp(fs afero.Fs, tempPath string, originalErr error) error {
	if err := removeIfExists(fs, tempPath); err != nil {
		return errors.Join(originalErr, fmt.Errorf("removing temp file %s: %w", tempPath, err))
	}
	return originalErr
}

func replaceExisting(fs afero.Fs, tempPath, targetPath string) error {
	// Overwrite-rename first; fall back to moving the old file aside
	if err := fs.Rename(tempPath, targetPath); err == nil {
		return nil
	}

	backupPath, err := nextSiblingPath(fs, targetPath, ".bak")
	if err != nil {
		return cleanupTemp(fs, tempPath, err)
	}

	if err := fs.Rename(targetPath, backupPath); err != nil {
		return cleanupTemp(fs, tempPath, err)
	}

	if err := fs.Rename(tempPath, targetPath); err != nil {
		err = cleanupTemp(fs, tempPath, err)
		if restoreErr := fs.Rename(backupPath, targetPath); restoreErr != nil {
			err = errors.Join(err, fmt.Errorf("restoring backup %s: %w", backupPath, restoreErr))
		}
		return err
	}

	if err := removeIfExists(fs, backupPath); err != nil {
		return fmt.Errorf("removing backup file %s: %w", backupPath, err)
	}
	return nil
}
