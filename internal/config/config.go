package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Upload     UploadConfig     `yaml:"upload" envconfig:"UPLOAD"`
	Attendance AttendanceConfig `yaml:"attendance" envconfig:"ATTENDANCE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"50"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"25"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	UploadDir string `yaml:"upload_dir" envconfig:"UPLOAD_DIR" default:"uploads"`
	ReportDir string `yaml:"report_dir" envconfig:"REPORT_DIR" default:"reports"`
}

// UploadConfig contains upload acceptance configuration
type UploadConfig struct {
	MaxFileSize  int64    `yaml:"max_file_size" envconfig:"MAX_FILE_SIZE" default:"10485760"`
	AllowedTypes []string `yaml:"allowed_types" envconfig:"ALLOWED_TYPES" default:".xlsx,.xls"`
}

// AttendanceConfig contains the institutional attendance rule set
type AttendanceConfig struct {
	// Regulation selects the default subject-merge policy: legacy or current.
	Regulation          string  `yaml:"regulation" envconfig:"REGULATION" default:"current"`
	EnableAdjustment    bool    `yaml:"enable_adjustment" envconfig:"ENABLE_ADJUSTMENT" default:"true"`
	AdjustmentThreshold float64 `yaml:"adjustment_threshold" envconfig:"ADJUSTMENT_THRESHOLD" default:"75.0"`
	MaxAdjustment       float64 `yaml:"max_adjustment" envconfig:"MAX_ADJUSTMENT" default:"10.0"`
}

// Load loads configuration from environment variables (with struct-tag
// defaults) and an optional YAML config file. Environment variables and
// defaults take precedence; file values fill whatever they leave unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("PROFORMA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := os.Getenv("PROFORMA_CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg.merge(fileCfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration with all struct-tag defaults applied.
func Default() *Config {
	var cfg Config
	// An unused prefix matches no environment variables, so only the
	// default tags apply.
	_ = envconfig.Process("PROFORMA_DEFAULTS_ONLY", &cfg)
	return &cfg
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge fills zero-valued fields from the file config
func (c *Config) merge(file *Config) {
	if c.Paths.UploadDir == "" {
		c.Paths.UploadDir = file.Paths.UploadDir
	}
	if c.Paths.ReportDir == "" {
		c.Paths.ReportDir = file.Paths.ReportDir
	}
	if c.Logging.Level == "" {
		c.Logging.Level = file.Logging.Level
	}
	if c.Logging.Output == "" {
		c.Logging.Output = file.Logging.Output
	}
	if c.Attendance.Regulation == "" {
		c.Attendance.Regulation = file.Attendance.Regulation
	}
}

// validate checks configuration invariants
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.Upload.MaxFileSize)
	}
	if c.Attendance.AdjustmentThreshold < 0 || c.Attendance.AdjustmentThreshold > 100 {
		return fmt.Errorf("adjustment threshold out of range: %.2f", c.Attendance.AdjustmentThreshold)
	}
	switch c.Attendance.Regulation {
	case "legacy", "current":
	default:
		return fmt.Errorf("unknown regulation: %q", c.Attendance.Regulation)
	}
	return nil
}
