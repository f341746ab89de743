package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "factorstd/internal/errors"
	"factorstd/internal/standardize"
)

// Config represents the complete application configuration
type Config struct {
	Standardize StandardizeConfig `yaml:"standardize" envconfig:"STANDARDIZE"`
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	Server      ServerConfig      `yaml:"server" envconfig:"SERVER"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// StandardizeConfig selects what a run standardizes and where the data lives
type StandardizeConfig struct {
	Method      string   `yaml:"method" envconfig:"METHOD"`
	Columns     []string `yaml:"columns" envconfig:"COLUMNS"`
	ColumnsFile string   `yaml:"columns_file" envconfig:"COLUMNS_FILE"`
	Workers     int      `yaml:"workers" envconfig:"WORKERS"`
	Input       string   `yaml:"input" envconfig:"INPUT"`
	Output      string   `yaml:"output" envconfig:"OUTPUT"`
	// Sheet names the Excel worksheet. Empty reads the first sheet and
	// writes table.DefaultSheet.
	Sheet       string   `yaml:"sheet" envconfig:"SHEET"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration   `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	MaxBodyBytes    int64           `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// TelemetryConfig controls the OpenTelemetry providers
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. An empty path falls back to
// FACTORSTD_CONFIG and then to ./factorstd.yaml when it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("path", path)
		}
	}

	// Unset variables leave the current value alone, so the environment
	// only overrides what it names.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile decodes a YAML file over cfg. Keys absent from the file keep
// their current value.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// getConfigFilePath returns the config file to read, or "" for none
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

// Validate checks the configuration and normalizes enumerated values
func (c *Config) Validate() error {
	if c.Standardize.Method != "" {
		if _, err := standardize.ParseMethod(c.Standardize.Method); err != nil {
			return err
		}
	}

	if c.Standardize.Workers < 0 {
		return apperrors.NewConfigError("workers must not be negative", nil).
			WithContext("workers", c.Standardize.Workers)
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return apperrors.NewConfigError(fmt.Sprintf("invalid log level %q", c.Logging.Level), nil)
	}

	c.Logging.Format = strings.ToLower(c.Logging.Format)
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return apperrors.NewConfigError(fmt.Sprintf("invalid log format %q", c.Logging.Format), nil)
	}

	switch c.Logging.Output {
	case "console":
	case "file", "both":
		if c.Logging.FilePath == "" {
			return apperrors.NewConfigError("log file path is required for file output", nil)
		}
	default:
		return apperrors.NewConfigError(fmt.Sprintf("invalid log output %q", c.Logging.Output), nil)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperrors.NewConfigError(fmt.Sprintf("invalid server port: %d", c.Server.Port), nil)
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return apperrors.NewConfigError("server read and write timeouts must be positive", nil)
	}

	if c.Server.MaxBodyBytes <= 0 {
		return apperrors.NewConfigError("server max body bytes must be positive", nil)
	}

	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.RPS <= 0 || c.Server.RateLimit.Burst <= 0) {
		return apperrors.NewConfigError("rate limit rps and burst must be positive", nil)
	}

	return nil
}

// ResolveColumns builds the column selection. A columns file takes
// precedence over the inline list.
func (s StandardizeConfig) ResolveColumns() (standardize.ColumnSet, error) {
	if s.ColumnsFile != "" {
		data, err := os.ReadFile(s.ColumnsFile)
		if err != nil {
			return standardize.ColumnSet{}, apperrors.NewConfigError("failed to read columns file", err).
				WithContext("path", s.ColumnsFile)
		}
		return standardize.ParseColumnSet(string(data))
	}
	return standardize.NewColumnSet(s.Columns)
}

// ResolveMethod parses the configured method
func (s StandardizeConfig) ResolveMethod() (standardize.Method, error) {
	return standardize.ParseMethod(s.Method)
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Standardize: StandardizeConfig{
			Method: standardize.MethodZScore.String(),
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/factorstd.log",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
			MaxBodyBytes:    DefaultMaxBodyBytes,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			MetricsEnabled: true,
		},
	}
}
