package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ata/internal/domain"
	"ata/internal/linker"
	"ata/internal/storage/db"
	"ata/internal/storage/registry"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ErrCancelled is returned by a NamePrompter when the user backs out
var ErrCancelled = errors.New("cancelled")

// InstallState is a step of a single install attempt
type InstallState int

const (
	AwaitingArchive InstallState = iota
	Extracting
	Classifying
	Routing
	Recorded
	Failed
)

func (s InstallState) String() string {
	switch s {
	case AwaitingArchive:
		return "AwaitingArchive"
	case Extracting:
		return "Extracting"
	case Classifying:
		return "Classifying"
	case Routing:
		return "Routing"
	case Recorded:
		return "Recorded"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("InstallState(%d)", int(s))
	}
}

// InstallError reports the step at which an install attempt failed
type InstallError struct {
	State InstallState
	Err   error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("install failed during %s: %v", e.State, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

// ArchiveExtractor unpacks an archive into a scratch directory owned by the caller
type ArchiveExtractor interface {
	ExtractToScratch(ctx context.Context, archivePath string) (*Scratch, error)
}

// NamePrompter asks the user what to call a freshly classified mod
type NamePrompter interface {
	PromptName(ctx context.Context, c Classification) (string, error)
}

// StaticName is a NamePrompter that always answers with the same name
type StaticName string

// PromptName implements NamePrompter
func (n StaticName) PromptName(context.Context, Classification) (string, error) {
	return string(n), nil
}

// InstallerConfig wires the collaborators of an Installer. Zero fields get
// working defaults on the OS filesystem.
type InstallerConfig struct {
	Fs            afero.Fs
	Extractor     ArchiveExtractor
	Classifier    *Classifier
	Router        *Router
	Prompter      NamePrompter
	Journal       *db.DB // Optional: records attempts and orphaned files
	RequiredFiles []string
	Logger        *log.Logger
}

// Installer runs install, uninstall and enable/disable against a registry
type Installer struct {
	fs            afero.Fs
	extractor     ArchiveExtractor
	classifier    *Classifier
	router        *Router
	prompter      NamePrompter
	journal       *db.DB
	linker        *linker.CopyLinker
	requiredFiles []string
	logger        *log.Logger
}

// NewInstaller creates a new installer
func NewInstaller(cfg InstallerConfig) *Installer {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Logger == nil {
		cfg.Logger = discardLogger()
	}
	if cfg.Extractor == nil {
		cfg.Extractor = NewExtractor().WithLogger(cfg.Logger)
	}
	if cfg.Classifier == nil {
		cfg.Classifier = NewClassifier(cfg.Fs).WithLogger(cfg.Logger)
	}
	if cfg.Router == nil {
		cfg.Router = NewRouter(cfg.Fs).WithLogger(cfg.Logger)
	}
	if cfg.RequiredFiles == nil {
		cfg.RequiredFiles = domain.DefaultRequiredFiles
	}

	return &Installer{
		fs:            cfg.Fs,
		extractor:     cfg.Extractor,
		classifier:    cfg.Classifier,
		router:        cfg.Router,
		prompter:      cfg.Prompter,
		journal:       cfg.Journal,
		linker:        linker.NewCopy(cfg.Fs),
		requiredFiles: cfg.RequiredFiles,
		logger:        cfg.Logger,
	}
}

// CheckGame verifies that the registry points at a game installation
func (i *Installer) CheckGame(reg *registry.Registry) error {
	ok, err := IsGameInstallation(i.fs, reg.GamePath(), i.logger)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewError(domain.KindInvalidGamePath, reg.GamePath(), "", nil)
	}
	return nil
}

// CheckPrerequisites verifies that the modding prerequisites are installed
func (i *Installer) CheckPrerequisites(reg *registry.Registry) error {
	missing := MissingPrerequisites(i.fs, reg.GamePath(), i.requiredFiles)
	if len(missing) > 0 {
		return domain.NewError(domain.KindMissingPrerequisites, reg.GamePath(), strings.Join(missing, ", "), nil)
	}
	return nil
}

// Install extracts, classifies and copies the mod in archivePath, then records
// it in reg. Errors are *InstallError carrying the step that failed. The
// registry is only changed when every file was copied.
func (i *Installer) Install(ctx context.Context, reg *registry.Registry, archivePath string) (*domain.ModRecord, error) {
	attempt := &db.Attempt{
		ID:          uuid.New().String(),
		ArchivePath: archivePath,
		StartedAt:   time.Now(),
	}
	logger := i.logger.With("attempt", attempt.ID)

	fail := func(state InstallState, err error, orphans []string) error {
		attempt.Outcome = db.OutcomeFailed
		attempt.FailedState = state.String()
		attempt.Reason = err.Error()
		i.record(attempt, orphans)
		logger.Debug("install failed", "state", state, "err", err)
		return &InstallError{State: state, Err: err}
	}

	// AwaitingArchive
	if err := i.CheckGame(reg); err != nil {
		return nil, fail(AwaitingArchive, err, nil)
	}
	if err := i.CheckPrerequisites(reg); err != nil {
		return nil, fail(AwaitingArchive, err, nil)
	}
	if _, err := i.fs.Stat(archivePath); err != nil {
		return nil, fail(AwaitingArchive, domain.NewError(domain.KindNotFound, archivePath, "", nil), nil)
	}

	// Extracting
	logger.Info("extracting archive", "archive", archivePath)
	scratch, err := i.extractor.ExtractToScratch(ctx, archivePath)
	if err != nil {
		return nil, fail(Extracting, err, nil)
	}
	defer func() {
		dir := scratch.Dir
		if err := scratch.Close(); err != nil {
			logger.Warn("scratch cleanup failed", "dir", dir, "err", err)
		}
	}()

	// Classifying
	classification, ok, err := i.classifier.Classify(scratch.Dir)
	if err != nil {
		return nil, fail(Classifying, err, nil)
	}
	if !ok {
		return nil, fail(Classifying, domain.NewError(domain.KindNoRecognizedMod, archivePath, "", nil), nil)
	}
	attempt.ModType = classification.Category.String()
	logger.Info("classified mod", "type", classification.Category, "proof", classification.ProofFile)

	// Routing
	name, err := i.promptName(ctx, reg, classification)
	if err != nil {
		return nil, fail(Routing, err, nil)
	}
	attempt.ModName = name

	record, err := i.router.Install(ctx, classification.Category, classification.SourceDir(), reg.GamePath(), name)
	if err != nil {
		var copyErr *domain.CopyError
		var orphans []string
		if errors.As(err, &copyErr) {
			orphans = copyErr.Copied
			logger.Warn("mod partially copied", "failed", copyErr.File, "left", len(orphans))
		}
		return nil, fail(Routing, err, orphans)
	}

	owners := reg.Owners(record.Files)
	if err := reg.Add(record); err != nil {
		logger.Error("files copied but registry not saved", "name", name, "files", len(record.Files))
		return nil, fail(Routing, err, record.Files)
	}
	i.releaseTakenFiles(name, owners)

	// Recorded
	attempt.Outcome = db.OutcomeRecorded
	i.record(attempt, nil)
	if i.journal != nil {
		if err := i.journal.ForgetOrphanedFiles(record.Files); err != nil {
			logger.Warn("updating orphan ledger failed", "err", err)
		}
	}
	logger.Info("mod installed", "name", record.Name, "type", record.Category, "files", len(record.Files))

	return record, nil
}

// releaseTakenFiles cleans up after files that changed owner: the stale
// disabled copy of a previous owner is deleted so the file only exists under
// the new mod.
func (i *Installer) releaseTakenFiles(name string, owners map[string]domain.ModRecord) {
	for path, prev := range owners {
		i.logger.Warn("mod file taken over", "file", path, "from", prev.Name, "to", name)
		if prev.Enabled {
			continue
		}
		stale := path + domain.DisabledSuffix
		present, err := i.linker.IsDeployed(stale)
		if err == nil && present {
			err = i.linker.Undeploy(stale)
		}
		if err != nil {
			i.logger.Warn("removing disabled copy failed", "file", stale, "err", err)
		}
	}
}

func (i *Installer) promptName(ctx context.Context, reg *registry.Registry, c Classification) (string, error) {
	if i.prompter == nil {
		return "", domain.NewError(domain.KindInvalidName, "", "no name given", nil)
	}

	raw, err := i.prompter.PromptName(ctx, c)
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(raw)
	if name == "" {
		return "", domain.NewError(domain.KindInvalidName, "", "mod name cannot be empty", nil)
	}
	if reg.Has(name) {
		return "", domain.NewError(domain.KindDuplicateMod, "", name, nil)
	}
	return name, nil
}

func (i *Installer) record(attempt *db.Attempt, orphans []string) {
	if i.journal == nil {
		return
	}
	attempt.FinishedAt = time.Now()
	if err := i.journal.SaveAttempt(attempt); err != nil {
		i.logger.Warn("writing install journal failed", "attempt", attempt.ID, "err", err)
		return
	}
	if err := i.journal.SaveOrphanedFiles(attempt.ID, orphans); err != nil {
		i.logger.Warn("recording orphaned files failed", "attempt", attempt.ID, "err", err)
	}
}

// Uninstall deletes the files of the mod named or numbered ident and removes
// it from the registry. Files that are already gone are skipped.
func (i *Installer) Uninstall(reg *registry.Registry, ident string) (domain.ModRecord, error) {
	if err := i.CheckGame(reg); err != nil {
		return domain.ModRecord{}, err
	}

	mod, _, err := reg.Find(ident)
	if err != nil {
		return domain.ModRecord{}, err
	}

	for _, f := range mod.Files {
		removed := false
		for _, path := range []string{f, f + domain.DisabledSuffix} {
			present, err := i.linker.IsDeployed(path)
			if err != nil {
				return domain.ModRecord{}, fmt.Errorf("checking %s: %w", path, err)
			}
			if !present {
				continue
			}
			if err := i.linker.Undeploy(path); err != nil {
				return domain.ModRecord{}, fmt.Errorf("uninstalling %s: %w", mod.Name, err)
			}
			removed = true
		}
		if !removed {
			i.logger.Warn("mod file already removed", "mod", mod.Name, "file", f)
		}
	}

	if err := reg.Remove(mod.Name); err != nil {
		return domain.ModRecord{}, err
	}
	i.logger.Info("mod uninstalled", "name", mod.Name, "files", len(mod.Files))
	return mod, nil
}

// SetEnabled renames the files of the mod named or numbered ident so the game
// loads them (enabled) or ignores them (disabled), and persists the flag.
func (i *Installer) SetEnabled(reg *registry.Registry, ident string, enabled bool) (domain.ModRecord, error) {
	if err := i.CheckGame(reg); err != nil {
		return domain.ModRecord{}, err
	}

	mod, _, err := reg.Find(ident)
	if err != nil {
		return domain.ModRecord{}, err
	}
	if mod.Enabled == enabled {
		return mod, nil
	}

	type move struct{ from, to string }
	var done []move
	undo := func() {
		for j := len(done) - 1; j >= 0; j-- {
			if _, err := i.linker.Move(done[j].to, done[j].from); err != nil {
				i.logger.Warn("restoring file failed", "file", done[j].from, "err", err)
			}
		}
	}

	for _, f := range mod.Files {
		from, to := f, f+domain.DisabledSuffix
		if enabled {
			from, to = to, from
		}
		moved, err := i.linker.Move(from, to)
		if err != nil {
			undo()
			return domain.ModRecord{}, err
		}
		if !moved {
			i.logger.Warn("mod file missing", "mod", mod.Name, "file", from)
			continue
		}
		done = append(done, move{from, to})
	}

	if err := reg.SetEnabled(mod.Name, enabled); err != nil {
		undo()
		return domain.ModRecord{}, err
	}

	mod.Enabled = enabled
	i.logger.Info("mod toggled", "name", mod.Name, "enabled", enabled)
	return mod, nil
}

// List returns the installed mods in install order
func (i *Installer) List(reg *registry.Registry) []domain.ModRecord {
	return reg.Mods()
}

// CleanOrphans deletes every file in the orphan ledger from disk and from the
// ledger, returning the paths that were handled
func (i *Installer) CleanOrphans() ([]string, error) {
	if i.journal == nil {
		return nil, nil
	}

	orphans, err := i.journal.ListOrphanedFiles()
	if err != nil {
		return nil, err
	}

	cleaned := make([]string, 0, len(orphans))
	for _, o := range orphans {
		if err := i.linker.Undeploy(o.Path); err != nil {
			return cleaned, err
		}
		if err := i.journal.DeleteOrphanedFile(o.Path); err != nil {
			return cleaned, err
		}
		cleaned = append(cleaned, o.Path)
	}
	return cleaned, nil
}
