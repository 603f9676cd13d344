package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apierrors "proformacli/internal/errors"
)

// AnalyzeRequest is the body of POST /{uploadID}. Regulation overrides the
// configured default when present.
type AnalyzeRequest struct {
	Regulation string `json:"regulation" validate:"omitempty,oneof=legacy current"`
}

// AnalysisHandler handles analysis HTTP requests.
type AnalysisHandler struct {
	uploads      UploadServiceInterface
	service      AnalysisServiceInterface
	exporter     ReportExporterInterface
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(
	uploads UploadServiceInterface,
	service AnalysisServiceInterface,
	exporter ReportExporterInterface,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *AnalysisHandler {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &AnalysisHandler{
		uploads:      uploads,
		service:      service,
		exporter:     exporter,
		validate:     v,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/{uploadID}", func(r chi.Router) {
		r.Use(h.AnalysisCtx)
		r.Post("/", h.Run)
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.Get)
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/critical", h.GetCritical)
		r.Get("/report", h.DownloadReport)
	})

	return r
}

// AnalysisCtx validates the uploadID path parameter.
func (h *AnalysisHandler) AnalysisCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "uploadID")
		if _, err := uuid.Parse(id); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("uploadID", "Upload ID must be a UUID"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run handles POST /{uploadID}: runs the analysis pipeline over a stored
// upload.
func (h *AnalysisHandler) Run(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uploadID")

	upload, ok := h.uploads.Get(id)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrUploadNotFound)
		return
	}

	var req AnalyzeRequest
	if r.Body != nil && r.ContentLength > 0 {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
		if err := json.Unmarshal(body, &req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
		if err := h.validate.Struct(req); err != nil {
			h.errorHandler.HandleError(w, r, h.validationError(err))
			return
		}
	}

	result, err := h.service.Analyze(r.Context(), upload, req.Regulation)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "analysis run finished",
		slog.String("upload_id", id),
		slog.Int("students", result.TotalStudents))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// Get handles GET /{uploadID}: returns a completed analysis.
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uploadID")
	result, ok := h.service.Result(id)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrAnalysisNotFound)
		return
	}
	render.JSON(w, r, result)
}

// GetCritical handles GET /{uploadID}/critical.
func (h *AnalysisHandler) GetCritical(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uploadID")
	students, ok := h.service.Critical(id)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrAnalysisNotFound)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"upload_id": id,
		"count":     len(students),
		"students":  students,
	})
}

// DownloadReport handles GET /{uploadID}/report: streams the report
// workbook.
func (h *AnalysisHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uploadID")
	result, ok := h.service.Result(id)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrAnalysisNotFound)
		return
	}

	filename := fmt.Sprintf("attendance-report-%s.xlsx", id)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.exporter.ExportTo(w, result); err != nil {
		// Headers already sent; log and give up on this response.
		h.logger.ErrorContext(r.Context(), "report streaming failed",
			slog.String("upload_id", id),
			slog.String("error", err.Error()))
	}
}

func (h *AnalysisHandler) validationError(err error) *apierrors.APIError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apierrors.ValidationError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apierrors.ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed %s validation", fe.Tag()),
			})
		}
		return apierrors.NewValidationErrors(fields)
	}
	return apierrors.InvalidRequestWithError(err)
}
