package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"proformacli/internal/config"
)

// HealthService answers liveness and readiness probes.
type HealthService struct {
	version   string
	paths     config.PathsConfig
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Checks    map[string]string      `json:"checks,omitempty"`
}

// NewHealthService creates a health service.
func NewHealthService(version string, paths config.PathsConfig, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Check reports overall health. Degrades when the upload directory is not
// usable, since every operation depends on it.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		Runtime: map[string]interface{}{
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(s.startTime).Seconds(),
		},
		Checks: make(map[string]string),
	}

	if info, err := os.Stat(s.paths.UploadDir); err != nil || !info.IsDir() {
		status.Status = "degraded"
		status.Checks["upload_dir"] = "unavailable"
		s.logger.WarnContext(ctx, "upload directory unavailable",
			slog.String("dir", s.paths.UploadDir))
	} else {
		status.Checks["upload_dir"] = "ok"
	}

	return status
}
