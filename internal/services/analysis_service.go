package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"proformacli/internal/attendance"
	"proformacli/internal/config"
	"proformacli/internal/dataprocessing"
	"proformacli/internal/decoder"
	apperrors "proformacli/internal/errors"
	"proformacli/internal/infrastructure"
	"proformacli/pkg/contracts/domain"
)

// SheetSource decodes a stored workbook into raw sheets. Satisfied by
// decoder.ExcelDecoder; tests substitute a stub.
type SheetSource interface {
	DecodeFile(path string) ([]decoder.Sheet, error)
}

// AnalysisService runs the full attendance pipeline over an uploaded
// workbook and keeps completed results in memory keyed by upload ID.
type AnalysisService struct {
	source     SheetSource
	resolver   *dataprocessing.Resolver
	normalizer *dataprocessing.Normalizer
	cfg        config.AttendanceConfig
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *infrastructure.AnalysisMetrics

	mu      sync.RWMutex
	results map[string]*domain.AnalysisResult
}

// NewAnalysisService creates an analysis service.
func NewAnalysisService(source SheetSource, cfg config.AttendanceConfig, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		source:     source,
		resolver:   dataprocessing.NewResolver(logger),
		normalizer: dataprocessing.NewNormalizer(logger),
		cfg:        cfg,
		logger:     logger,
		tracer:     otel.Tracer(infrastructure.MeterName),
		results:    make(map[string]*domain.AnalysisResult),
	}
}

// WithMetrics attaches metric instruments. Optional; the service works
// without them.
func (s *AnalysisService) WithMetrics(metrics *infrastructure.AnalysisMetrics) *AnalysisService {
	s.metrics = metrics
	return s
}

// sheetExtract is the per-sheet outcome of header resolution and
// normalization.
type sheetExtract struct {
	resolved   bool
	resolveErr error
	rows       int
	records    []domain.AttendanceRecord
}

// Analyze runs the pipeline over an upload. The regulation argument
// overrides the configured default when non-empty. Results are stored and
// retrievable via Result until the process exits.
func (s *AnalysisService) Analyze(ctx context.Context, upload domain.Upload, regulation string) (*domain.AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.run",
		trace.WithAttributes(
			attribute.String("upload_id", upload.ID),
			attribute.String("filename", upload.Filename),
		),
	)
	defer span.End()

	start := time.Now()

	if regulation == "" {
		regulation = s.cfg.Regulation
	}
	policy := attendance.Policy(regulation)
	if !policy.IsValid() {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("unknown regulation %q", regulation))
	}

	sheets, err := s.source.DecodeFile(upload.Path)
	if err != nil {
		return nil, apperrors.NewDecodingError("failed to decode workbook", err).
			WithContext("upload_id", upload.ID)
	}

	extracts := make([]sheetExtract, len(sheets))
	g, gctx := errgroup.WithContext(ctx)
	for i, sheet := range sheets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			extracts[i] = s.extractSheet(gctx, sheet)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totalRows := 0
	var records []domain.AttendanceRecord
	var firstResolveErr error
	anyResolved := false
	for _, extract := range extracts {
		if !extract.resolved {
			if firstResolveErr == nil {
				firstResolveErr = extract.resolveErr
			}
			continue
		}
		anyResolved = true
		totalRows += extract.rows
		records = append(records, extract.records...)
	}

	if !anyResolved {
		if firstResolveErr != nil {
			return nil, firstResolveErr
		}
		return nil, dataprocessing.ErrUnresolvableHeaders
	}
	if len(records) == 0 {
		return nil, dataprocessing.ErrNoValidRecords
	}

	merger := attendance.NewMerger(policy, s.logger)
	engine := attendance.NewEngine(attendance.Config{
		EnableAdjustment:    s.cfg.EnableAdjustment,
		AdjustmentThreshold: s.cfg.AdjustmentThreshold,
		MaxAdjustment:       s.cfg.MaxAdjustment,
	}, s.logger)

	groups := merger.Merge(records)
	students := make([]domain.StudentAttendance, 0, len(groups))
	subjectCodes := make(map[string]struct{})
	for _, group := range groups {
		student := engine.ComputeStudent(group.StudentID, group.StudentName, group.Subjects)
		for _, subject := range student.Subjects {
			subjectCodes[subject.SubjectCode] = struct{}{}
		}
		students = append(students, student)
	}
	sort.Slice(students, func(i, j int) bool {
		return students[i].StudentID < students[j].StudentID
	})

	result := &domain.AnalysisResult{
		UploadID:             upload.ID,
		ProcessedAt:          time.Now().UTC(),
		Regulation:           policy.String(),
		TotalStudents:        len(students),
		TotalSubjects:        len(subjectCodes),
		TotalRows:            totalRows,
		ParsedRecords:        len(records),
		Students:             students,
		CategoryDistribution: engine.Distribution(students),
	}

	s.mu.Lock()
	s.results[upload.ID] = result
	s.mu.Unlock()

	duration := time.Since(start)
	s.recordMetrics(ctx, result, totalRows, duration)

	s.logger.InfoContext(ctx, "analysis completed",
		slog.String("upload_id", upload.ID),
		slog.String("regulation", policy.String()),
		slog.Int("students", result.TotalStudents),
		slog.Int("subjects", result.TotalSubjects),
		slog.Int("parsed_records", result.ParsedRecords),
		slog.Int("total_rows", result.TotalRows),
		slog.Duration("duration", duration))

	return result, nil
}

// extractSheet tries each candidate header offset of a sheet until the
// resolver accepts one, then normalizes the rows below it. A sheet whose
// offsets all fail is skipped, not fatal; other sheets may still carry the
// roster.
func (s *AnalysisService) extractSheet(ctx context.Context, sheet decoder.Sheet) sheetExtract {
	var extract sheetExtract
	for _, offset := range sheet.CandidateOffsets() {
		labels, rows := sheet.TableAt(offset)
		mapping, err := s.resolver.Resolve(labels)
		if err != nil {
			if extract.resolveErr == nil {
				extract.resolveErr = err
			}
			continue
		}

		records := s.normalizer.Normalize(rows, mapping)
		extract.resolved = true
		extract.resolveErr = nil
		extract.rows = len(rows)
		extract.records = records

		s.logger.DebugContext(ctx, "sheet extracted",
			slog.String("sheet", sheet.Name),
			slog.Int("header_offset", offset),
			slog.Int("rows", len(rows)),
			slog.Int("records", len(records)))
		return extract
	}
	return extract
}

func (s *AnalysisService) recordMetrics(ctx context.Context, result *domain.AnalysisResult, totalRows int, duration time.Duration) {
	if s.metrics == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("regulation", result.Regulation))
	s.metrics.AnalysesTotal.Add(ctx, 1, attrs)
	s.metrics.AnalysisDuration.Record(ctx, duration.Seconds(), attrs)
	s.metrics.RecordsParsed.Add(ctx, int64(result.ParsedRecords), attrs)
	s.metrics.RecordsSkipped.Add(ctx, int64(totalRows-result.ParsedRecords), attrs)
	s.metrics.CriticalStudents.Add(ctx, int64(result.CategoryDistribution[domain.CategoryCritical]), attrs)
}

// Result returns a completed analysis by upload ID.
func (s *AnalysisService) Result(uploadID string) (*domain.AnalysisResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[uploadID]
	return result, ok
}

// Critical returns the critical students of a completed analysis.
func (s *AnalysisService) Critical(uploadID string) ([]domain.StudentAttendance, bool) {
	result, ok := s.Result(uploadID)
	if !ok {
		return nil, false
	}
	return result.CriticalStudents(), true
}
