package http

import (
	"context"
	"io"

	"proformacli/internal/services"
	"proformacli/pkg/contracts/domain"
)

// UploadServiceInterface is the upload operations the handlers depend on.
type UploadServiceInterface interface {
	Accept(ctx context.Context, filename string, size int64, r io.Reader) (domain.Upload, error)
	Preview(ctx context.Context, id string) (*services.WorkbookPreview, error)
	Get(id string) (domain.Upload, bool)
	Remove(ctx context.Context, id string) error
	List() []domain.Upload
}

// AnalysisServiceInterface is the analysis operations the handlers depend on.
type AnalysisServiceInterface interface {
	Analyze(ctx context.Context, upload domain.Upload, regulation string) (*domain.AnalysisResult, error)
	Result(uploadID string) (*domain.AnalysisResult, bool)
	Critical(uploadID string) ([]domain.StudentAttendance, bool)
}

// ReportExporterInterface renders a result as a downloadable workbook.
type ReportExporterInterface interface {
	ExportTo(w io.Writer, result *domain.AnalysisResult) error
}

// HealthServiceInterface answers health probes.
type HealthServiceInterface interface {
	Check(ctx context.Context) services.HealthStatus
}
