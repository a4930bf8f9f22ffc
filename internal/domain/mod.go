package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DisabledSuffix is appended to the files of a disabled mod so the game stops
// loading them while they stay on disk.
const DisabledSuffix = ".disabled"

// ModRecord is an installed mod as tracked by the registry
type ModRecord struct {
	Name     string   `json:"name"`     // Chosen by the user, used as identifier
	Files    []string `json:"files"`    // Absolute destination paths, in copy order
	Enabled  bool     `json:"enabled"`  // Whether the files are active in the game directory
	Category Category `json:"mod_type"` // Kind of content
}

// NewModRecord builds an enabled record. The files slice is copied so the
// record owns its list.
func NewModRecord(name string, category Category, files []string) *ModRecord {
	owned := make([]string, len(files))
	copy(owned, files)
	return &ModRecord{
		Name:     name,
		Files:    owned,
		Enabled:  true,
		Category: category,
	}
}

// Validate checks the record invariants: a non-empty name, absolute and
// unique file paths, and at least one file for categories that need content.
func (m *ModRecord) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return NewError(KindInvalidName, "", "mod name cannot be empty", nil)
	}
	if !m.Category.Valid() {
		return NewError(KindInvalidConfig, "", fmt.Sprintf("mod %q has an invalid type", m.Name), nil)
	}
	if m.Category.RequiresFiles() && len(m.Files) == 0 {
		return NewError(KindInvalidConfig, "", fmt.Sprintf("mod %q owns no files", m.Name), nil)
	}

	seen := make(map[string]struct{}, len(m.Files))
	for _, f := range m.Files {
		if !filepath.IsAbs(f) {
			return NewError(KindInvalidConfig, f, fmt.Sprintf("mod %q has a relative file path", m.Name), nil)
		}
		if _, dup := seen[f]; dup {
			return NewError(KindInvalidConfig, f, fmt.Sprintf("mod %q lists a file twice", m.Name), nil)
		}
		seen[f] = struct{}{}
	}
	return nil
}

// ActivePath returns where file currently lives on disk given the enabled flag
func (m *ModRecord) ActivePath(file string) string {
	if m.Enabled {
		return file
	}
	return file + DisabledSuffix
}
