package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"ata/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// Detector recognizes a single file as evidence of a mod category
type Detector interface {
	Detect(path string) (domain.Category, bool)
}

// DetectorFunc adapts a function to the Detector interface
type DetectorFunc func(path string) (domain.Category, bool)

// Detect calls f(path)
func (f DetectorFunc) Detect(path string) (domain.Category, bool) {
	return f(path)
}

// ExtensionDetector is the built-in file table. Extensions are case-sensitive.
//
//	*.dss          Textures
//	*.usm          CutsceneReplacements
//	pl.dtt, pl.dat PlayerModels
//	wp.dtt, wp.dat WeaponModels
//	bg.dtt, bg.dat WorldModels
type ExtensionDetector struct{}

// Detect implements Detector
func (ExtensionDetector) Detect(path string) (domain.Category, bool) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	switch strings.TrimPrefix(ext, ".") {
	case "dss":
		return domain.Textures, true
	case "usm":
		return domain.CutsceneReplacements, true
	case "dtt", "dat":
		switch stem {
		case "pl":
			return domain.PlayerModels, true
		case "wp":
			return domain.WeaponModels, true
		case "bg":
			return domain.WorldModels, true
		}
	}
	return 0, false
}

// Policy decides what happens after the first recognized file
type Policy int

const (
	// FirstMatch stops at the first recognized file
	FirstMatch Policy = iota
	// Strict scans the whole tree and rejects folders mixing categories
	Strict
)

// Classification is the outcome of a successful Classify
type Classification struct {
	Category  domain.Category
	Root      string // Directory that was classified
	ProofFile string // File that proved the category, relative to Root
}

// SourceDir is the directory holding the proof file, where the mod's files live
func (c Classification) SourceDir() string {
	return filepath.Join(c.Root, filepath.Dir(c.ProofFile))
}

// ProofPath is the absolute path of the proof file
func (c Classification) ProofPath() string {
	return filepath.Join(c.Root, c.ProofFile)
}

// Classifier inspects an extracted archive to decide which kind of mod it holds
type Classifier struct {
	fs        afero.Fs
	detectors []Detector
	policy    Policy
	logger    *log.Logger
}

// NewClassifier creates a classifier with the built-in extension table
func NewClassifier(fs afero.Fs) *Classifier {
	return &Classifier{
		fs:        fs,
		detectors: []Detector{ExtensionDetector{}},
		logger:    discardLogger(),
	}
}

// WithDetector appends a detector consulted after the ones already registered
func (c *Classifier) WithDetector(d Detector) *Classifier {
	c.detectors = append(c.detectors, d)
	return c
}

// WithPolicy sets the classification policy
func (c *Classifier) WithPolicy(p Policy) *Classifier {
	c.policy = p
	return c
}

// WithLogger sets the logger used for skipped-file warnings
func (c *Classifier) WithLogger(l *log.Logger) *Classifier {
	if l != nil {
		c.logger = l
	}
	return c
}

var errStopWalk = errors.New("stop walk")

// Classify walks dir in lexical order and reports the category of the first
// recognized file. ok is false when nothing in the tree is recognized.
func (c *Classifier) Classify(dir string) (result Classification, ok bool, err error) {
	info, err := c.fs.Stat(dir)
	if err != nil {
		return Classification{}, false, domain.NewError(domain.KindNotFound, dir, "", err)
	}
	if !info.IsDir() {
		return Classification{}, false, domain.NewError(domain.KindNotFound, dir, "not a directory", nil)
	}

	walkErr := afero.Walk(c.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == dir {
				return domain.NewError(domain.KindNotFound, dir, "", err)
			}
			c.logger.Warn("skipping unreadable entry", "path", path, "err", err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		category, matched := c.detect(path)
		if !matched {
			return nil
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = filepath.Base(path)
		}

		if !ok {
			result = Classification{Category: category, Root: dir, ProofFile: rel}
			ok = true
			if c.policy == FirstMatch {
				return errStopWalk
			}
			return nil
		}

		if category != result.Category {
			return domain.NewError(domain.KindClassificationAmbiguous, dir,
				fmt.Sprintf("%s (%s) and %s (%s)", result.Category, result.ProofFile, category, rel), nil)
		}
		return nil
	})

	if walkErr != nil && !errors.Is(walkErr, errStopWalk) {
		return Classification{}, false, walkErr
	}
	return result, ok, nil
}

func (c *Classifier) detect(path string) (domain.Category, bool) {
	base := filepath.Base(path)
	if !utf8.ValidString(base) {
		c.logger.Warn("skipping file with invalid name encoding", "path", path)
		return 0, false
	}

	ext := filepath.Ext(base)
	hasExt := ext != "" && ext != "." && ext != base

	for _, d := range c.detectors {
		if _, builtin := d.(ExtensionDetector); builtin && !hasExt {
			continue
		}
		if category, ok := d.Detect(path); ok {
			return category, true
		}
	}
	if !hasExt {
		c.logger.Warn("skipping file without extension", "path", path)
	}
	return 0, false
}

// manifestDetector recognizes a file by its exact name
type manifestDetector struct {
	name     string
	category domain.Category
}

// NewManifestDetector returns a Detector that maps files named exactly name
// to category, e.g. a ReShade preset manifest.
func NewManifestDetector(name string, category domain.Category) Detector {
	return manifestDetector{name: name, category: category}
}

func (d manifestDetector) Detect(path string) (domain.Category, bool) {
	if filepath.Base(path) == d.name {
		return d.category, true
	}
	return 0, false
}
