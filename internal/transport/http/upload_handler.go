package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	apierrors "proformacli/internal/errors"
	"proformacli/internal/services"
	"proformacli/pkg/contracts/domain"
)

// maxUploadMemory bounds the multipart parse buffer; larger files spill to
// temp files.
const maxUploadMemory = 8 << 20

// UploadHandler handles workbook upload HTTP requests.
type UploadHandler struct {
	service      UploadServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(service UploadServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *UploadHandler {
	return &UploadHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "upload_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the upload routes.
func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Create)
	r.Get("/", h.List)

	r.Route("/{uploadID}", func(r chi.Router) {
		r.Use(h.UploadCtx)
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
	})

	return r
}

// UploadCtx validates the uploadID path parameter.
func (h *UploadHandler) UploadCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "uploadID")
		if _, err := uuid.Parse(id); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("uploadID", "Upload ID must be a UUID"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Create handles POST / with a multipart "file" field.
func (h *UploadHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A multipart \"file\" field is required"))
		return
	}
	defer file.Close()

	upload, err := h.service.Accept(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "upload accepted",
		slog.String("upload_id", upload.ID),
		slog.String("filename", upload.Filename))

	// Preview failures do not invalidate the upload; the analysis run will
	// report decoding problems with a proper status.
	preview, err := h.service.Preview(r.Context(), upload.ID)
	if err != nil {
		h.logger.WarnContext(r.Context(), "workbook preview failed",
			slog.String("upload_id", upload.ID),
			slog.String("error", err.Error()))
		preview = nil
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, uploadResponse{Upload: upload, Preview: preview})
}

// uploadResponse is the creation payload: the stored upload plus an optional
// shallow parse of its sheets.
type uploadResponse struct {
	domain.Upload
	Preview *services.WorkbookPreview `json:"preview,omitempty"`
}

// List handles GET /.
func (h *UploadHandler) List(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"uploads": h.service.List(),
	})
}

// Get handles GET /{uploadID}.
func (h *UploadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uploadID")
	upload, ok := h.service.Get(id)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrUploadNotFound)
		return
	}
	render.JSON(w, r, upload)
}

// Delete handles DELETE /{uploadID}.
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uploadID")
	if _, ok := h.service.Get(id); !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrUploadNotFound)
		return
	}
	if err := h.service.Remove(r.Context(), id); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.NoContent(w, r)
}
