// Package registry persists the list of installed mods and the game location.
//
// A Registry is loaded once at startup and passed explicitly to every operation
// that reads or changes it. Every mutation is written back to disk before the
// method returns; when the write fails the in-memory state is rolled back so
// memory and disk never disagree.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"ata/internal/domain"

	"github.com/spf13/afero"
)

// document is the on-disk shape of data.json
type document struct {
	GamePath string             `json:"game_path"`
	Mods     []domain.ModRecord `json:"mods"`
}

// Registry owns every ModRecord and the configured game path
type Registry struct {
	fs   afero.Fs
	path string
	doc  document
}

// Load reads the registry at path. A missing file is created with gamePath as
// the game location and no mods. A file that exists but cannot be parsed is an
// error.
func Load(fs afero.Fs, path, gamePath string) (*Registry, error) {
	r := &Registry{fs: fs, path: path}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading registry %s: %w", path, err)
		}
		r.doc = document{GamePath: gamePath, Mods: []domain.ModRecord{}}
		if err := r.Save(); err != nil {
			return nil, err
		}
		return r, nil
	}

	if err := json.Unmarshal(data, &r.doc); err != nil {
		return nil, fmt.Errorf("parsing registry %s: %w", path, err)
	}
	if r.doc.Mods == nil {
		r.doc.Mods = []domain.ModRecord{}
	}
	for i := range r.doc.Mods {
		if r.doc.Mods[i].Files == nil {
			r.doc.Mods[i].Files = []string{}
		}
	}

	return r, nil
}

// Path returns the file the registry persists to
func (r *Registry) Path() string {
	return r.path
}

// GamePath returns the configured game installation directory
func (r *Registry) GamePath() string {
	return r.doc.GamePath
}

// SetGamePath changes the game directory and persists it
func (r *Registry) SetGamePath(path string) error {
	previous := r.doc.GamePath
	r.doc.GamePath = path
	if err := r.Save(); err != nil {
		r.doc.GamePath = previous
		return err
	}
	return nil
}

// Mods returns a copy of the installed mods in install order
func (r *Registry) Mods() []domain.ModRecord {
	mods := make([]domain.ModRecord, len(r.doc.Mods))
	for i, m := range r.doc.Mods {
		mods[i] = cloneRecord(m)
	}
	return mods
}

// Len returns the number of installed mods
func (r *Registry) Len() int {
	return len(r.doc.Mods)
}

// Has reports whether a mod with the exact name is installed
func (r *Registry) Has(name string) bool {
	return r.indexOf(name) >= 0
}

// Find looks up a mod by exact name, or failing that by its 1-based position
// in the list. It returns the record and its 0-based index.
func (r *Registry) Find(ident string) (domain.ModRecord, int, error) {
	if i := r.indexOf(ident); i >= 0 {
		return cloneRecord(r.doc.Mods[i]), i, nil
	}

	if n, err := strconv.Atoi(strings.TrimSpace(ident)); err == nil && n >= 1 && n <= len(r.doc.Mods) {
		return cloneRecord(r.doc.Mods[n-1]), n - 1, nil
	}

	return domain.ModRecord{}, -1, domain.NewError(domain.KindModNotFound, "", ident, nil)
}

// Owners returns, for each of files already claimed by an installed mod, the
// record that claims it.
func (r *Registry) Owners(files []string) map[string]domain.ModRecord {
	owners := make(map[string]domain.ModRecord)
	for _, f := range files {
		for _, m := range r.doc.Mods {
			if slices.Contains(m.Files, f) {
				owners[f] = cloneRecord(m)
				break
			}
		}
	}
	return owners
}

// Add appends a record and persists the registry. The new record takes over
// any of its files claimed by older records; an older record left with no
// files is dropped.
func (r *Registry) Add(m *domain.ModRecord) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if r.Has(m.Name) {
		return domain.NewError(domain.KindDuplicateMod, "", m.Name, nil)
	}

	previous := r.doc.Mods
	mods := make([]domain.ModRecord, 0, len(previous)+1)
	for _, old := range previous {
		kept := slices.DeleteFunc(cloneRecord(old).Files, func(f string) bool {
			return slices.Contains(m.Files, f)
		})
		if len(old.Files) > 0 && len(kept) == 0 {
			continue
		}
		old.Files = kept
		mods = append(mods, old)
	}
	r.doc.Mods = append(mods, cloneRecord(*m))

	if err := r.Save(); err != nil {
		r.doc.Mods = previous
		return err
	}
	return nil
}

// Remove deletes the named record and persists the registry
func (r *Registry) Remove(name string) error {
	i := r.indexOf(name)
	if i < 0 {
		return domain.NewError(domain.KindModNotFound, "", name, nil)
	}

	previous := r.doc.Mods
	mods := make([]domain.ModRecord, 0, len(previous)-1)
	mods = append(mods, previous[:i]...)
	r.doc.Mods = append(mods, previous[i+1:]...)

	if err := r.Save(); err != nil {
		r.doc.Mods = previous
		return err
	}
	return nil
}

// SetEnabled flips the enabled flag of the named record and persists the registry
func (r *Registry) SetEnabled(name string, enabled bool) error {
	i := r.indexOf(name)
	if i < 0 {
		return domain.NewError(domain.KindModNotFound, "", name, nil)
	}

	previous := r.doc.Mods[i].Enabled
	r.doc.Mods[i].Enabled = enabled
	if err := r.Save(); err != nil {
		r.doc.Mods[i].Enabled = previous
		return err
	}
	return nil
}

// Save writes the registry to disk
func (r *Registry) Save() error {
	data, err := json.MarshalIndent(r.doc, "", "  ")
	if err != nil {
		return domain.NewError(domain.KindRegistryPersistenceFailure, r.path, "", err)
	}

	if err := r.fs.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return domain.NewError(domain.KindRegistryPersistenceFailure, r.path, "", err)
	}

	if err := writeFileAtomic(r.fs, r.path, append(data, '\n')); err != nil {
		return domain.NewError(domain.KindRegistryPersistenceFailure, r.path, "", err)
	}
	return nil
}

func (r *Registry) indexOf(name string) int {
	for i, m := range r.doc.Mods {
		if m.Name == name {
			return i
		}
	}
	return -1
}

func cloneRecord(m domain.ModRecord) domain.ModRecord {
	m.Files = append([]string{}, m.Files...)
	return m
}
