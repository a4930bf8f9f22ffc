package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ata/internal/domain"
	"ata/internal/steam"
	"ata/internal/storage/config"
	"ata/internal/storage/db"
	"ata/internal/storage/registry"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// ServiceConfig holds configuration for the core service
type ServiceConfig struct {
	ConfigDir string // Directory for config.yaml and, by default, data.json
	DataDir   string // Directory for the install journal and prerequisite script
	HomeDir   string // Used for the default game location; defaults to $HOME
	SteamRoot string // Extra Steam installation to search when detecting the game
	Fs        afero.Fs
	Logger    *log.Logger
}

// Service owns the state of one session: settings, the mod registry, the
// install journal, and the components that act on them
type Service struct {
	config   *config.Config
	fs       afero.Fs
	registry *registry.Registry
	journal  *db.DB
	scripts  *ScriptRunner
	logger   *log.Logger

	extractor  *Extractor
	classifier *Classifier
	router     *Router

	configDir string
	dataDir   string
	homeDir   string
	steamRoot string
}

// NewService loads settings and the registry and opens the journal. A
// registry file that exists but cannot be parsed is an error.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Logger == nil {
		cfg.Logger = discardLogger()
	}
	if cfg.HomeDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.HomeDir = home
	}

	appConfig, err := config.Load(cfg.ConfigDir, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	reg, err := registry.Load(cfg.Fs, appConfig.RegistryPath, domain.DefaultGamePath(cfg.HomeDir))
	if err != nil {
		return nil, fmt.Errorf("loading mod registry: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	database, err := db.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	policy := FirstMatch
	if appConfig.Strict() {
		policy = Strict
	}
	classifier := NewClassifier(cfg.Fs).WithPolicy(policy).WithLogger(cfg.Logger)
	if appConfig.ReshadeManifest != "" {
		classifier.WithDetector(NewManifestDetector(appConfig.ReshadeManifest, domain.ReshadePreset))
	}

	return &Service{
		config:     appConfig,
		fs:         cfg.Fs,
		registry:   reg,
		journal:    database,
		scripts:    NewScriptRunner(DefaultScriptTimeout),
		logger:     cfg.Logger,
		extractor:  NewExtractor().WithScratchRoot(appConfig.ScratchDir).WithLogger(cfg.Logger),
		classifier: classifier,
		router:     NewRouter(cfg.Fs).WithReshadePresetDir(appConfig.ReshadePresetDir).WithLogger(cfg.Logger),
		configDir:  cfg.ConfigDir,
		dataDir:    cfg.DataDir,
		homeDir:    cfg.HomeDir,
		steamRoot:  cfg.SteamRoot,
	}, nil
}

// Close releases resources held by the service
func (s *Service) Close() error {
	if s.journal != nil {
		return s.journal.Close()
	}
	return nil
}

// Config returns the loaded settings
func (s *Service) Config() *config.Config {
	return s.config
}

// Registry returns the session's mod registry
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// DB returns the install journal
func (s *Service) DB() *db.DB {
	return s.journal
}

// ConfigDir returns the configuration directory
func (s *Service) ConfigDir() string {
	return s.configDir
}

// Installer returns an installer that names new mods with prompter
func (s *Service) Installer(prompter NamePrompter) *Installer {
	return NewInstaller(InstallerConfig{
		Fs:            s.fs,
		Extractor:     s.extractor,
		Classifier:    s.classifier,
		Router:        s.router,
		Prompter:      prompter,
		Journal:       s.journal,
		RequiredFiles: s.config.RequiredFiles,
		Logger:        s.logger,
	})
}

// Install installs the archive at archivePath
func (s *Service) Install(ctx context.Context, archivePath string, prompter NamePrompter) (*domain.ModRecord, error) {
	return s.Installer(prompter).Install(ctx, s.registry, archivePath)
}

// Uninstall removes the mod named or numbered ident
func (s *Service) Uninstall(ident string) (domain.ModRecord, error) {
	return s.Installer(nil).Uninstall(s.registry, ident)
}

// SetEnabled enables or disables the mod named or numbered ident
func (s *Service) SetEnabled(ident string, enabled bool) (domain.ModRecord, error) {
	return s.Installer(nil).SetEnabled(s.registry, ident, enabled)
}

// List returns the installed mods in install order
func (s *Service) List() []domain.ModRecord {
	return s.registry.Mods()
}

// Classify extracts the archive and reports what kind of mod it holds without
// installing it. The scratch directory is removed before returning.
func (s *Service) Classify(ctx context.Context, archivePath string) (Classification, bool, error) {
	scratch, err := s.extractor.ExtractToScratch(ctx, archivePath)
	if err != nil {
		return Classification{}, false, err
	}
	defer func() {
		if err := scratch.Close(); err != nil {
			s.logger.Warn("scratch cleanup failed", "err", err)
		}
	}()

	return s.classifier.Classify(scratch.Dir)
}

// GamePath returns the configured game directory
func (s *Service) GamePath() string {
	return s.registry.GamePath()
}

// SetGamePath points the registry at a new game directory after checking that
// it holds the game
func (s *Service) SetGamePath(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return domain.NewError(domain.KindInvalidGamePath, dir, "", err)
	}

	ok, err := IsGameInstallation(s.fs, abs, s.logger)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewError(domain.KindInvalidGamePath, abs, "", nil)
	}
	return s.registry.SetGamePath(abs)
}

// DetectGamePaths searches the Steam libraries for game installations
func (s *Service) DetectGamePaths() []string {
	roots := steam.Roots(s.fs, s.homeDir, s.steamRoot)
	var found []string
	for _, dir := range steam.FindApp(s.fs, roots, domain.SteamAppID) {
		ok, err := IsGameInstallation(s.fs, dir, s.logger)
		if err != nil || !ok {
			s.logger.Debug("skipping Steam install without the game executable", "dir", dir)
			continue
		}
		found = append(found, dir)
	}
	return found
}

// CheckGame verifies the configured game directory
func (s *Service) CheckGame() error {
	return s.Installer(nil).CheckGame(s.registry)
}

// MissingPrerequisites lists required files absent from the game directory
func (s *Service) MissingPrerequisites() []string {
	return MissingPrerequisites(s.fs, s.registry.GamePath(), s.config.RequiredFiles)
}

// PrerequisitesScript returns the path of the prerequisite installation script
func (s *Service) PrerequisitesScript() string {
	return s.config.PrerequisitesScript
}

// InstallPrerequisites runs the prerequisite installation script
func (s *Service) InstallPrerequisites(ctx context.Context) (*ScriptResult, error) {
	return s.scripts.Run(ctx, s.config.PrerequisitesScript, s.registry.GamePath())
}

// History returns recent install attempts, newest first
func (s *Service) History(limit int) ([]*db.Attempt, error) {
	return s.journal.ListAttempts(limit)
}

// Orphans returns files left in the game directory by failed installs
func (s *Service) Orphans() ([]db.OrphanedFile, error) {
	return s.journal.ListOrphanedFiles()
}

// CleanOrphans deletes the files returned by Orphans
func (s *Service) CleanOrphans() ([]string, error) {
	return s.Installer(nil).CleanOrphans()
}
