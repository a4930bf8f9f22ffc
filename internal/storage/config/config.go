package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ata/internal/domain"

	"gopkg.in/yaml.v3"
)

// Classification policies
const (
	ClassifyFirstMatch = "first-match"
	ClassifyStrict     = "strict"
)

// Config holds global application settings
type Config struct {
	RegistryPath        string   `yaml:"registry_path,omitempty"`
	ScratchDir          string   `yaml:"scratch_dir,omitempty"`
	PrerequisitesScript string   `yaml:"prerequisites_script,omitempty"`
	RequiredFiles       []string `yaml:"required_files,omitempty"`
	ReshadePresetDir    string   `yaml:"reshade_preset_dir,omitempty"`
	ReshadeManifest     string   `yaml:"reshade_manifest,omitempty"`
	Classification      string   `yaml:"classification"`
	Keybindings         string   `yaml:"keybindings"`
}

// Defaults returns the settings used when config.yaml is absent
func Defaults(configDir, dataDir string) *Config {
	return &Config{
		RegistryPath:        filepath.Join(configDir, "data.json"),
		PrerequisitesScript: filepath.Join(dataDir, "install-prerequisites.sh"),
		RequiredFiles:       append([]string(nil), domain.DefaultRequiredFiles...),
		Classification:      ClassifyFirstMatch,
		Keybindings:         "vim",
	}
}

// Load reads configuration from the given directory. Settings left out of the
// file keep their defaults.
func Load(configDir, dataDir string) (*Config, error) {
	cfg := Defaults(configDir, dataDir)

	configPath := filepath.Join(configDir, "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // Return defaults
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	switch c.Classification {
	case "", ClassifyFirstMatch, ClassifyStrict:
	default:
		return domain.NewError(domain.KindInvalidConfig, "classification",
			fmt.Sprintf("%q is not %s or %s", c.Classification, ClassifyFirstMatch, ClassifyStrict), nil)
	}

	switch c.Keybindings {
	case "", "vim", "standard":
	default:
		return domain.NewError(domain.KindInvalidConfig, "keybindings",
			fmt.Sprintf("%q is not vim or standard", c.Keybindings), nil)
	}

	for _, f := range c.RequiredFiles {
		if f == "" || filepath.IsAbs(f) || strings.Contains(f, "..") {
			return domain.NewError(domain.KindInvalidConfig, "required_files",
				fmt.Sprintf("%q must be a path relative to the game directory", f), nil)
		}
	}

	if c.ReshadePresetDir != "" && strings.Contains(c.ReshadePresetDir, "..") {
		return domain.NewError(domain.KindInvalidConfig, "reshade_preset_dir", "contains invalid traversal", nil)
	}

	if c.ReshadeManifest != "" && (filepath.Base(c.ReshadeManifest) != c.ReshadeManifest || c.ReshadeManifest == ".." || c.ReshadeManifest == ".") {
		return domain.NewError(domain.KindInvalidConfig, "reshade_manifest",
			fmt.Sprintf("%q must be a file name", c.ReshadeManifest), nil)
	}

	if c.RegistryPath != "" {
		if err := ParseRegistryPath(c.RegistryPath); err != nil {
			return domain.NewError(domain.KindInvalidConfig, "registry_path", err.Error(), nil)
		}
	}

	return nil
}

// Strict reports whether classification should reject mixed archives
func (c *Config) Strict() bool {
	return c.Classification == ClassifyStrict
}

// Save writes configuration to the given directory
func (c *Config) Save(configDir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
