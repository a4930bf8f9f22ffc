// Package config provides configuration file parsing and validation.
package config

import (
	"errors"
	"path/filepath"
	"strings"
)

// ParseRegistryPath validates the location of the mod registry file.
// It returns an error if:
//   - The path is empty
//   - The path is not absolute
//   - The path contains parent directory traversal (..)
//   - The file does not have a .json extension
//
// The file itself need not exist; it is created on first load.
func ParseRegistryPath(path string) error {
	if path == "" {
		return errors.New("registry path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		return errors.New("registry path must be absolute")
	}

	if strings.Contains(path, "..") {
		return errors.New("registry path contains invalid traversal")
	}

	if strings.ToLower(filepath.Ext(path)) != ".json" {
		return errors.New("registry file must have .json extension")
	}

	return nil
}
