package core

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"ata/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// Archive formats understood by the extractor
const (
	FormatZip = "zip"
	Format7z  = "7z"
	FormatRar = "rar"
)

var archiveMagic = []struct {
	format string
	magic  []byte
}{
	{FormatZip, []byte("PK\x03\x04")},
	{FormatZip, []byte("PK\x05\x06")}, // empty archive
	{Format7z, []byte("7z\xBC\xAF\x27\x1C")},
	{FormatRar, []byte("Rar!\x1A\x07")},
}

// sevenZipBinaries are tried in order when extracting .7z and .rar archives
var sevenZipBinaries = []string{"7z", "7zz", "7za"}

// Extractor handles archive extraction for mod files
type Extractor struct {
	scratchRoot string
	timeout     time.Duration
	logger      *log.Logger
}

// NewExtractor creates a new Extractor. Scratch directories go under the OS
// temp directory unless WithScratchRoot says otherwise.
func NewExtractor() *Extractor {
	return &Extractor{
		timeout: extract7zTimeout,
		logger:  discardLogger(),
	}
}

// WithScratchRoot sets the parent of scratch directories
func (e *Extractor) WithScratchRoot(dir string) *Extractor {
	e.scratchRoot = dir
	return e
}

// WithLogger sets the logger used for extraction progress
func (e *Extractor) WithLogger(l *log.Logger) *Extractor {
	if l != nil {
		e.logger = l
	}
	return e
}

// Scratch is a temporary directory holding an extracted archive
type Scratch struct {
	Dir string
	fs  afero.Fs
}

// NewScratch wraps an existing directory on fs so that Close removes it
func NewScratch(fs afero.Fs, dir string) *Scratch {
	return &Scratch{Dir: dir, fs: fs}
}

// Close removes the scratch directory. Calling it again is a no-op.
func (s *Scratch) Close() error {
	if s == nil || s.Dir == "" {
		return nil
	}
	dir := s.Dir
	s.Dir = ""

	fs := s.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := fs.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing scratch directory %s: %w", dir, err)
	}
	return nil
}

// ExtractToScratch extracts an archive into a fresh scratch directory. The
// caller owns the result and must Close it. On error no directory is left behind.
func (e *Extractor) ExtractToScratch(ctx context.Context, archivePath string) (*Scratch, error) {
	if err := checkArchiveExists(archivePath); err != nil {
		return nil, err
	}

	if e.scratchRoot != "" {
		if err := os.MkdirAll(e.scratchRoot, 0755); err != nil {
			return nil, domain.NewError(domain.KindDecompressionFailure, e.scratchRoot, "creating scratch root", err)
		}
	}

	dir, err := os.MkdirTemp(e.scratchRoot, "ata-extract-*")
	if err != nil {
		return nil, domain.NewError(domain.KindDecompressionFailure, archivePath, "creating scratch directory", err)
	}
	scratch := &Scratch{Dir: dir}

	if err := e.Extract(ctx, archivePath, dir); err != nil {
		if cerr := scratch.Close(); cerr != nil {
			e.logger.Warn("scratch cleanup failed", "dir", dir, "err", cerr)
		}
		return nil, err
	}

	return scratch, nil
}

// Extract extracts an archive to the destination directory
// Supports .zip (native), .7z and .rar (via system 7z command)
func (e *Extractor) Extract(ctx context.Context, archivePath, destDir string) error {
	if err := checkArchiveExists(archivePath); err != nil {
		return err
	}

	format, err := e.Sniff(archivePath)
	if err != nil {
		return err
	}
	if format == "" {
		return domain.NewError(domain.KindUnsupportedFormat, archivePath, "", nil)
	}

	// Create destination directory
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return domain.NewError(domain.KindDecompressionFailure, destDir, "creating destination directory", err)
	}

	e.logger.Debug("extracting archive", "archive", archivePath, "format", format, "dest", destDir)

	switch format {
	case FormatZip:
		err = e.extractZip(ctx, archivePath, destDir)
	default:
		err = e.extract7z(ctx, archivePath, destDir)
	}
	if err != nil {
		if domain.KindOf(err) != domain.KindUnknown {
			return err
		}
		return domain.NewError(domain.KindDecompressionFailure, archivePath, "", err)
	}
	return nil
}

func checkArchiveExists(archivePath string) error {
	info, err := os.Stat(archivePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewError(domain.KindNotFound, archivePath, "", nil)
		}
		return domain.NewError(domain.KindNotFound, archivePath, "", err)
	}
	if info.IsDir() {
		return domain.NewError(domain.KindUnsupportedFormat, archivePath, "is a directory", nil)
	}
	return nil
}

// CanExtract returns true if the extractor can handle the given filename
func (e *Extractor) CanExtract(filename string) bool {
	return e.DetectFormat(filename) != ""
}

// DetectFormat returns the archive format based on filename extension
func (e *Extractor) DetectFormat(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".zip":
		return FormatZip
	case ".7z":
		return Format7z
	case ".rar":
		return FormatRar
	default:
		return ""
	}
}

// Sniff returns the archive format from the extension, falling back to the
// file's leading bytes. It returns "" when neither identifies an archive.
func (e *Extractor) Sniff(archivePath string) (string, error) {
	if format := e.DetectFormat(archivePath); format != "" {
		return format, nil
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return "", domain.NewError(domain.KindNotFound, archivePath, "", err)
	}
	defer f.Close()

	header := make([]byte, 8)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", domain.NewError(domain.KindDecompressionFailure, archivePath, "reading header", err)
	}
	header = header[:n]

	for _, m := range archiveMagic {
		if bytes.HasPrefix(header, m.magic) {
			return m.format, nil
		}
	}
	return "", nil
}

// extractZip extracts a ZIP archive using Go's native archive/zip package
func (e *Extractor) extractZip(ctx context.Context, archivePath, destDir string) (err error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer func() {
		if cerr := r.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing zip: %w", cerr)
		}
	}()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("extraction interrupted: %w", err)
		}
		if err := e.extractZipFile(f, destDir); err != nil {
			return err
		}
	}

	return nil
}

// extractZipFile extracts a single file from a ZIP archive
func (e *Extractor) extractZipFile(f *zip.File, destDir string) (err error) {
	// Sanitize the file path to prevent zip slip attacks
	destPath, err := e.sanitizePath(destDir, f.Name)
	if err != nil {
		return err
	}

	// Handle directories
	if f.FileInfo().IsDir() {
		// Use 0755 for directories to ensure we can write files into them
		return os.MkdirAll(destPath, 0755)
	}

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening file %s in archive: %w", f.Name, err)
	}
	defer func() {
		if cerr := rc.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing archive entry %s: %w", f.Name, cerr)
		}
	}()

	mode := f.Mode().Perm()
	if mode&0600 != 0600 {
		mode |= 0600
	}
	outFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", destPath, err)
	}
	defer func() {
		if cerr := outFile.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing file %s: %w", destPath, cerr)
		}
	}()

	if _, err = io.Copy(outFile, rc); err != nil {
		return fmt.Errorf("writing file %s: %w", destPath, err)
	}

	return nil
}

// sanitizePath ensures the extracted file path is within the destination directory
func (e *Extractor) sanitizePath(destDir, filePath string) (string, error) {
	destPath := filepath.Join(destDir, filepath.Clean(filePath))

	root := filepath.Clean(destDir)
	if destPath != root && !strings.HasPrefix(destPath, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("path traversal detected: %s", filePath)
	}

	return destPath, nil
}

// extract7zTimeout is the maximum time allowed for 7z extraction (corrupted archives or hangs).
const extract7zTimeout = 5 * time.Minute

func find7z() (string, error) {
	for _, name := range sevenZipBinaries {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("none of %s found in PATH", strings.Join(sevenZipBinaries, ", "))
}

// extract7z extracts archives using the system 7z command.
// This handles .7z and .rar files. A timeout prevents hangs on corrupted archives.
func (e *Extractor) extract7z(ctx context.Context, archivePath, destDir string) error {
	bin, err := find7z()
	if err != nil {
		return domain.NewError(domain.KindDecompressionFailure, archivePath,
			"7z command not found: install p7zip to extract .7z and .rar files", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// -y: assume yes to all queries; -o: output directory (no space between -o and path)
	cmd := exec.CommandContext(ctx, bin, "x", "-y", "-o"+destDir, archivePath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.NewError(domain.KindDecompressionFailure, archivePath,
				fmt.Sprintf("7z extraction timed out after %v", e.timeout), err)
		}
		return domain.NewError(domain.KindDecompressionFailure, archivePath,
			strings.TrimSpace(string(output)), err)
	}

	return nil
}
