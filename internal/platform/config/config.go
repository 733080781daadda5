// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20 // 1048576 bytes

	// DefaultRequestTimeout bounds a single request's handler chain.
	DefaultRequestTimeout = 15 * time.Second

	// DefaultDirectoryCircuitMaxFailures is the default failures before the
	// directory circuit opens.
	DefaultDirectoryCircuitMaxFailures = 5

	// DefaultDirectoryCircuitHalfOpenLimit is the default successes to close
	// the directory circuit.
	DefaultDirectoryCircuitHalfOpenLimit = 3

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Auth      AuthConfig      `koanf:"auth"`
	Scope     ScopeConfig     `koanf:"scope"     validate:"required"`
	Directory DirectoryConfig `koanf:"directory" validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	Redact []string      `koanf:"redact"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"       validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"   validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"    validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// AuthConfig contains gateway authentication header settings.
type AuthConfig struct {
	Enabled       bool   `koanf:"enabled"`
	RolesHeader   string `koanf:"roles_header"   validate:"required_if=Enabled true"`
	ScopesHeader  string `koanf:"scopes_header"  validate:"required_if=Enabled true"`
	SubjectHeader string `koanf:"subject_header" validate:"required_if=Enabled true"`
}

// ScopeConfig contains request-scoped context store settings.
type ScopeConfig struct {
	// Tier forces the identity tier below fibers. "auto" detects it.
	Tier string `koanf:"tier" validate:"required,oneof=auto goroutine process"`

	// LogKeys are copied from the caller's slot into every log record.
	LogKeys []string `koanf:"log_keys"`

	// RequestTimeout bounds each request's handler chain. Zero disables it.
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"min=0"`

	// MetricsNamespace prefixes the store's Prometheus metrics.
	MetricsNamespace string `koanf:"metrics_namespace" validate:"required"`
}

// DirectoryConfig contains user directory settings.
type DirectoryConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=1ms"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
}

// CircuitBreakerConfig contains circuit breaker settings for the directory.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "scopestore",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.redact":           []string{},
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "scopestore",
		"telemetry.sampling_rate": 1.0,

		"auth.enabled":        true,
		"auth.roles_header":   "X-User-Roles",
		"auth.scopes_header":  "X-User-Scopes",
		"auth.subject_header": "X-User-ID",

		"scope.tier":              "auto",
		"scope.log_keys":          []string{"trace_id", "request_id", "correlation_id", "user_id"},
		"scope.request_timeout":   DefaultRequestTimeout.String(),
		"scope.metrics_namespace": "scopestore",

		"directory.timeout":                         "2s",
		"directory.circuit_breaker.max_failures":    DefaultDirectoryCircuitMaxFailures,
		"directory.circuit_breaker.timeout":         "30s",
		"directory.circuit_breaker.half_open_limit": DefaultDirectoryCircuitHalfOpenLimit,
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix)
//  2. Profile config file (configs/{profile}.yaml)
//  3. Base config file (configs/base.yaml)
//  4. Default values
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// 2. Load base config file if it exists
	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	// 3. Load profile config file if it exists
	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	// 4. Load environment variables with APP_ prefix
	err = k.Load(env.ProviderWithValue(envPrefix, ".", envTransform(k.Keys())), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

const envPrefix = "APP_"

// envTransform maps APP_SCOPE_LOG_KEYS to the known key scope.log_keys.
// Unknown variables fall back to replacing every underscore with a dot.
// Comma separated values become lists for keys that hold lists.
func envTransform(known []string) func(key, value string) (string, any) {
	byFlat := make(map[string]string, len(known))
	for _, k := range known {
		byFlat[strings.ReplaceAll(k, ".", "_")] = k
	}

	return func(key, value string) (string, any) {
		flat := strings.ToLower(strings.TrimPrefix(key, envPrefix))

		path, ok := byFlat[flat]
		if !ok {
			return strings.ReplaceAll(flat, "_", "."), value
		}

		if _, isList := listKeys[path]; isList {
			return path, splitList(value)
		}

		return path, value
	}
}

var listKeys = map[string]struct{}{
	"scope.log_keys": {},
	"log.redact":     {},
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil // File doesn't exist, that's fine
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
