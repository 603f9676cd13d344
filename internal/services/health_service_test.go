package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"proformacli/internal/config"
)

func TestHealthService_Check_Healthy(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewHealthService("v1.0.0", config.PathsConfig{UploadDir: t.TempDir()}, logger)

	status := svc.Check(context.Background())

	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "v1.0.0", status.Version)
	assert.Equal(t, "ok", status.Checks["upload_dir"])
	assert.NotEmpty(t, status.Runtime["go_version"])
}

func TestHealthService_Check_DegradedWhenUploadDirMissing(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	svc := NewHealthService("v1.0.0", config.PathsConfig{UploadDir: missing}, logger)

	status := svc.Check(context.Background())

	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "unavailable", status.Checks["upload_dir"])
}
