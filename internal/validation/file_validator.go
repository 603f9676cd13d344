package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"proformacli/internal/config"
)

// FileValidator validates uploaded workbooks and filesystem paths before
// any processing happens.
type FileValidator struct {
	cfg    config.UploadConfig
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(cfg config.UploadConfig, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		cfg:    cfg,
		logger: logger,
	}
}

// ValidateUpload checks an incoming upload by name and declared size.
func (v *FileValidator) ValidateUpload(filename string, size int64) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("filename is empty")
	}

	base := filepath.Base(filename)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejecting temporary spreadsheet file",
			slog.String("file", filename))
		return fmt.Errorf("file %s is a temporary spreadsheet file", base)
	}

	ext := strings.ToLower(filepath.Ext(base))
	if !v.extensionAllowed(ext) {
		v.logger.Error("Rejected upload with unsupported extension",
			slog.String("file", base),
			slog.String("extension", ext))
		return fmt.Errorf("file type %s is not supported", ext)
	}

	if size <= 0 {
		return fmt.Errorf("file %s is empty", base)
	}
	if v.cfg.MaxFileSize > 0 && size > v.cfg.MaxFileSize {
		v.logger.Error("Rejected oversized upload",
			slog.String("file", base),
			slog.Int64("size", size),
			slog.Int64("max_size", v.cfg.MaxFileSize))
		return fmt.Errorf("file %s payload too large: %d bytes exceeds limit of %d", base, size, v.cfg.MaxFileSize)
	}

	return nil
}

func (v *FileValidator) extensionAllowed(ext string) bool {
	for _, allowed := range v.cfg.AllowedTypes {
		if strings.EqualFold(strings.TrimSpace(allowed), ext) {
			return true
		}
	}
	return false
}

// ValidateWorkbookFile checks that a file on disk exists and looks like a
// spreadsheet we can decode.
func (v *FileValidator) ValidateWorkbookFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	if err := v.ValidateUpload(path, info.Size()); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	return nil
}
