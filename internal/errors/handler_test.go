package errors

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "context deadline exceeded maps to timeout",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "api error passes through status",
			err:        ErrAnalysisNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   TypeAnalysisNotFound,
		},
		{
			name:       "unresolvable headers maps to 422",
			err:        errors.New("could not identify required attendance columns: missing student_id"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeHeadersNotFound,
		},
		{
			name:       "no valid records maps to 422",
			err:        errors.New("no valid attendance records found"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeNoUsableRecords,
		},
		{
			name:       "app validation error maps to 400",
			err:        NewAppValidationError("file type .csv is not supported"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "app decoding error maps to 422",
			err:        NewDecodingError("failed to decode workbook", errors.New("bad zip")),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeUndecodable,
		},
		{
			name:       "generic not found maps to 404",
			err:        errors.New("sheet not found"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "unknown error maps to 500",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewErrorHandler(newTestLogger(), false)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/abc", nil)

			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
		})
	}
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	handler := NewErrorHandler(newTestLogger(), false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	handler.HandleError(rec, req, nil)

	assert.Empty(t, rec.Body.String())
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	handler := NewErrorHandler(newTestLogger(), true)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", nil)

	handler.HandlePanic(rec, req, "merge invoked on empty record group")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeInternal, body["type"])
	assert.Contains(t, body["panic"], "empty record group")
	assert.NotEmpty(t, body["stack"])
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := NewErrorHandler(newTestLogger(), false)
	mw := RecoveryMiddleware(handler)

	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	mw(panicking).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestErrorHandler_NotFound(t *testing.T) {
	handler := NewErrorHandler(newTestLogger(), false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)

	handler.NotFound(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(422, TypeHeadersNotFound, "Headers Not Resolvable", "missing student_id", "/api/v1/uploads").
		WithExtension("labels", []string{"Name", "Score"})

	raw, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, TypeHeadersNotFound, body["type"])
	assert.Equal(t, "missing student_id", body["detail"])
	assert.Equal(t, []interface{}{"Name", "Score"}, body["labels"])
}
