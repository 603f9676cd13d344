package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefault verifies the struct-tag defaults
func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "uploads", cfg.Paths.UploadDir)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxFileSize)
	assert.Equal(t, []string{".xlsx", ".xls"}, cfg.Upload.AllowedTypes)

	assert.Equal(t, "current", cfg.Attendance.Regulation)
	assert.True(t, cfg.Attendance.EnableAdjustment)
	assert.InDelta(t, 75.0, cfg.Attendance.AdjustmentThreshold, 1e-9)
	assert.InDelta(t, 10.0, cfg.Attendance.MaxAdjustment, 1e-9)
}

// TestLoadEnvOverride verifies environment variables win
func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PROFORMA_SERVER_PORT", "9090")
	t.Setenv("PROFORMA_ATTENDANCE_REGULATION", "legacy")
	t.Setenv("PROFORMA_ATTENDANCE_ADJUSTMENT_THRESHOLD", "70")
	t.Setenv("PROFORMA_CONFIG_FILE", "does-not-exist.yaml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "legacy", cfg.Attendance.Regulation)
	assert.InDelta(t, 70.0, cfg.Attendance.AdjustmentThreshold, 1e-9)
}

// TestLoadValidation rejects broken configuration
func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "PROFORMA_SERVER_PORT", "0"},
		{"bad regulation", "PROFORMA_ATTENDANCE_REGULATION", "r99"},
		{"bad threshold", "PROFORMA_ATTENDANCE_ADJUSTMENT_THRESHOLD", "150"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PROFORMA_CONFIG_FILE", "does-not-exist.yaml")
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
