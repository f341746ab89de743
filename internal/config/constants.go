package config

import "time"

// Application constants
const (
	AppName    = "factorstd"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. FACTORSTD_LOGGING_LEVEL
	EnvPrefix = "FACTORSTD"
	// DefaultConfigFile is read from the working directory when present
	DefaultConfigFile = "factorstd.yaml"

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	// Request limits
	DefaultMaxBodyBytes   = 32 << 20
	DefaultRequestTimeout = 2 * time.Minute
)
