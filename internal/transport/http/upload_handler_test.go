package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "proformacli/internal/errors"
	"proformacli/internal/services"
	"proformacli/pkg/contracts/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(newTestLogger(), false)
}

// mockUploadService implements UploadServiceInterface for handler tests.
type mockUploadService struct {
	uploads   map[string]domain.Upload
	acceptErr error
	preview   *services.WorkbookPreview
}

func newMockUploadService() *mockUploadService {
	return &mockUploadService{uploads: make(map[string]domain.Upload)}
}

func (m *mockUploadService) Accept(ctx context.Context, filename string, size int64, r io.Reader) (domain.Upload, error) {
	if m.acceptErr != nil {
		return domain.Upload{}, m.acceptErr
	}
	upload := domain.Upload{ID: uuid.New().String(), Filename: filename, Size: size}
	m.uploads[upload.ID] = upload
	return upload, nil
}

func (m *mockUploadService) Preview(ctx context.Context, id string) (*services.WorkbookPreview, error) {
	return m.preview, nil
}

func (m *mockUploadService) Get(id string) (domain.Upload, bool) {
	u, ok := m.uploads[id]
	return u, ok
}

func (m *mockUploadService) Remove(ctx context.Context, id string) error {
	delete(m.uploads, id)
	return nil
}

func (m *mockUploadService) List() []domain.Upload {
	out := make([]domain.Upload, 0, len(m.uploads))
	for _, u := range m.uploads {
		out = append(out, u)
	}
	return out
}

func uploadRouter(svc UploadServiceInterface) chi.Router {
	h := NewUploadHandler(svc, newTestLogger(), newTestErrorHandler())
	r := chi.NewRouter()
	r.Mount("/api/v1/uploads", h.Routes())
	return r
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadHandler_Create(t *testing.T) {
	svc := newMockUploadService()
	svc.preview = &services.WorkbookPreview{
		Sheets: []services.SheetPreview{{Name: "Roster", Rows: 42}},
	}
	router := uploadRouter(svc)

	body, contentType := multipartBody(t, "file", "roster.xlsx", "workbook bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		domain.Upload
		Preview *services.WorkbookPreview `json:"preview"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "roster.xlsx", resp.Filename)
	_, err := uuid.Parse(resp.ID)
	assert.NoError(t, err)
	require.NotNil(t, resp.Preview)
	require.Len(t, resp.Preview.Sheets, 1)
	assert.Equal(t, "Roster", resp.Preview.Sheets[0].Name)
	assert.Equal(t, 42, resp.Preview.Sheets[0].Rows)
}

func TestUploadHandler_Create_MissingFile(t *testing.T) {
	router := uploadRouter(newMockUploadService())

	body, contentType := multipartBody(t, "document", "roster.xlsx", "x")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadHandler_Create_ValidationRejection(t *testing.T) {
	svc := newMockUploadService()
	svc.acceptErr = apierrors.NewAppValidationError("file type .csv is not supported")
	router := uploadRouter(svc)

	body, contentType := multipartBody(t, "file", "roster.csv", "x")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadHandler_Get(t *testing.T) {
	svc := newMockUploadService()
	upload, _ := svc.Accept(context.Background(), "roster.xlsx", 4, nil)
	router := uploadRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/uploads/"+upload.ID, nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Upload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, upload.ID, got.ID)
}

func TestUploadHandler_Get_NotFound(t *testing.T) {
	router := uploadRouter(newMockUploadService())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/uploads/"+uuid.New().String(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadHandler_Get_InvalidID(t *testing.T) {
	router := uploadRouter(newMockUploadService())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/uploads/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadHandler_Delete(t *testing.T) {
	svc := newMockUploadService()
	upload, _ := svc.Accept(context.Background(), "roster.xlsx", 4, nil)
	router := uploadRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/uploads/"+upload.ID, nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := svc.Get(upload.ID)
	assert.False(t, ok)
}

func TestUploadHandler_List(t *testing.T) {
	svc := newMockUploadService()
	svc.Accept(context.Background(), "a.xlsx", 1, nil)
	svc.Accept(context.Background(), "b.xlsx", 1, nil)
	router := uploadRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/uploads", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Uploads []domain.Upload `json:"uploads"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Uploads, 2)
}
