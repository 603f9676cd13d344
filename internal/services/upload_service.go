package services

import (
	"context"
	"io"
	"log/slog"

	"proformacli/internal/errors"
	"proformacli/internal/files"
	"proformacli/internal/validation"
	"proformacli/pkg/contracts/domain"
)

// UploadService accepts workbook uploads: validates them and hands them to
// the file manager for storage.
type UploadService struct {
	manager   *files.Manager
	validator *validation.FileValidator
	source    SheetSource
	logger    *slog.Logger
}

// NewUploadService creates an upload service.
func NewUploadService(manager *files.Manager, validator *validation.FileValidator, logger *slog.Logger) *UploadService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadService{
		manager:   manager,
		validator: validator,
		logger:    logger,
	}
}

// WithPreview attaches a sheet source so stored workbooks can be preview
// parsed. Returns the service for chaining.
func (s *UploadService) WithPreview(source SheetSource) *UploadService {
	s.source = source
	return s
}

// Accept validates and stores an incoming upload.
func (s *UploadService) Accept(ctx context.Context, filename string, size int64, r io.Reader) (domain.Upload, error) {
	if err := s.validator.ValidateUpload(filename, size); err != nil {
		s.logger.WarnContext(ctx, "upload rejected",
			slog.String("filename", filename),
			slog.Int64("size", size),
			slog.String("reason", err.Error()))
		return domain.Upload{}, errors.NewAppValidationError(err.Error())
	}

	upload, err := s.manager.Save(filename, r)
	if err != nil {
		return domain.Upload{}, errors.NewStorageError("failed to store upload", err)
	}

	return upload, nil
}

// Get returns a stored upload by ID.
func (s *UploadService) Get(id string) (domain.Upload, bool) {
	return s.manager.Get(id)
}

// Remove deletes a stored upload.
func (s *UploadService) Remove(ctx context.Context, id string) error {
	if err := s.manager.Remove(id); err != nil {
		return errors.NewStorageError("failed to remove upload", err)
	}
	s.logger.InfoContext(ctx, "upload deleted", slog.String("upload_id", id))
	return nil
}

// List returns all stored uploads, newest first.
func (s *UploadService) List() []domain.Upload {
	return s.manager.List()
}

// SheetPreview summarizes one sheet of a stored workbook.
type SheetPreview struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// WorkbookPreview is a shallow parse of a stored workbook: sheet names and
// row counts, enough for a client to sanity-check an upload before running
// an analysis.
type WorkbookPreview struct {
	Sheets []SheetPreview `json:"sheets"`
}

// Preview decodes a stored workbook and returns its sheet summary. Returns
// nil with no error when the service has no sheet source attached.
func (s *UploadService) Preview(ctx context.Context, id string) (*WorkbookPreview, error) {
	if s.source == nil {
		return nil, nil
	}
	upload, ok := s.manager.Get(id)
	if !ok {
		return nil, errors.NewNotFoundError("upload").WithContext("upload_id", id)
	}

	sheets, err := s.source.DecodeFile(upload.Path)
	if err != nil {
		return nil, errors.NewDecodingError("failed to decode workbook", err).
			WithContext("upload_id", id)
	}

	preview := &WorkbookPreview{Sheets: make([]SheetPreview, 0, len(sheets))}
	for _, sheet := range sheets {
		preview.Sheets = append(preview.Sheets, SheetPreview{
			Name: sheet.Name,
			Rows: len(sheet.Rows),
		})
	}
	s.logger.DebugContext(ctx, "workbook previewed",
		slog.String("upload_id", id),
		slog.Int("sheets", len(preview.Sheets)))
	return preview, nil
}
