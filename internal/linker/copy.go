package linker

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// CopyLinker deploys mods by copying files
type CopyLinker struct {
	fs afero.Fs
}

// NewCopy creates a copy linker working on fs
func NewCopy(fs afero.Fs) *CopyLinker {
	return &CopyLinker{fs: fs}
}

// Deploy copies src to dst, replacing any existing file at dst
func (l *CopyLinker) Deploy(src, dst string) (err error) {
	if err := l.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating destination dir: %w", err)
	}

	srcFile, err := l.fs.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if srcInfo.IsDir() {
		return fmt.Errorf("source is a directory: %s", src)
	}

	dstFile, err := l.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}
	defer func() {
		if cerr := dstFile.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing destination: %w", cerr)
		}
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("copying file: %w", err)
	}

	return nil
}

// Undeploy removes the file at dst. A missing file is not an error.
func (l *CopyLinker) Undeploy(dst string) error {
	if err := l.fs.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}

// IsDeployed checks if dst exists
func (l *CopyLinker) IsDeployed(dst string) (bool, error) {
	return afero.Exists(l.fs, dst)
}

// Move renames a deployed file, used to park files of disabled mods.
// A missing source is reported as false without error.
func (l *CopyLinker) Move(src, dst string) (bool, error) {
	if err := l.fs.Rename(src, dst); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("renaming %s: %w", src, err)
	}
	return true, nil
}
