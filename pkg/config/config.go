package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spezi-dev/spezi/pkg/observability"
	"github.com/spezi-dev/spezi/pkg/storage"
)

// FileEnv names the environment variable pointing at an optional YAML file
const FileEnv = "SPEZI_CONFIG_FILE"

// Config holds all application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       storage.Config      `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`

	// OpsPort serves /healthz, /readyz and /metrics
	OpsPort string `yaml:"ops_port"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// TaskTimeout bounds detached background work such as last-login refreshes
	TaskTimeout time.Duration `yaml:"task_timeout"`

	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       string                   `yaml:"log_level"`
	MetricsEnabled bool                     `yaml:"metrics_enabled"`
	OTel           observability.OTelConfig `yaml:"otel"`
}

// Level parses the configured log level
func (o ObservabilityConfig) Level() (observability.LogLevel, error) {
	return observability.ParseLogLevel(o.LogLevel)
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "3000",
			OpsPort:         "9090",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: observability.DefaultShutdownTimeout,
			TaskTimeout:     5 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Storage: storage.DefaultConfig(),
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			MetricsEnabled: true,
			OTel: observability.OTelConfig{
				Enabled:        false,
				Endpoint:       "localhost:4317",
				ServiceName:    "spezi",
				ServiceVersion: "dev",
				Insecure:       true,
				SampleRatio:    1,
			},
		},
	}
}

// LoadConfig layers defaults, the YAML file named by SPEZI_CONFIG_FILE and
// environment overrides, in that order, then validates the result.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	e := &envReader{}

	// PORT is the conventional name; SPEZI_PORT wins when both are set.
	e.str("PORT", &c.Server.Port)
	e.str("SPEZI_PORT", &c.Server.Port)
	e.str("SPEZI_HOST", &c.Server.Host)
	e.str("SPEZI_OPS_PORT", &c.Server.OpsPort)
	e.duration("SPEZI_READ_TIMEOUT", &c.Server.ReadTimeout)
	e.duration("SPEZI_WRITE_TIMEOUT", &c.Server.WriteTimeout)
	e.duration("SPEZI_IDLE_TIMEOUT", &c.Server.IdleTimeout)
	e.duration("SPEZI_SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)
	e.duration("SPEZI_TASK_TIMEOUT", &c.Server.TaskTimeout)
	e.int64("SPEZI_MAX_BODY_BYTES", &c.Server.MaxBodyBytes)

	e.str("SPEZI_DB_DRIVER", &c.Storage.Driver)
	e.str("SPEZI_DB_DSN", &c.Storage.DSN)
	e.int("SPEZI_DB_MAX_CONNS", &c.Storage.MaxConns)
	e.int("SPEZI_DB_MIN_CONNS", &c.Storage.MinConns)
	e.duration("SPEZI_DB_TIMEOUT", &c.Storage.Timeout)
	e.duration("SPEZI_DB_MAX_LIFETIME", &c.Storage.MaxLifetime)
	e.duration("SPEZI_DB_MAX_IDLE_TIME", &c.Storage.MaxIdleTime)
	e.bool("SPEZI_DB_AUTO_MIGRATE", &c.Storage.AutoMigrate)

	e.str("SPEZI_LOG_LEVEL", &c.Observability.LogLevel)
	e.bool("SPEZI_METRICS_ENABLED", &c.Observability.MetricsEnabled)
	e.bool("SPEZI_OTEL_ENABLED", &c.Observability.OTel.Enabled)
	e.str("SPEZI_OTEL_ENDPOINT", &c.Observability.OTel.Endpoint)
	e.str("SPEZI_OTEL_SERVICE_NAME", &c.Observability.OTel.ServiceName)
	e.str("SPEZI_OTEL_SERVICE_VERSION", &c.Observability.OTel.ServiceVersion)
	e.bool("SPEZI_OTEL_INSECURE", &c.Observability.OTel.Insecure)
	e.float("SPEZI_OTEL_SAMPLE_RATIO", &c.Observability.OTel.SampleRatio)

	return e.err()
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Server.OpsPort == "" {
		return errors.New("ops port is required")
	}
	if c.Server.Port == c.Server.OpsPort {
		return errors.New("server port and ops port must be different")
	}

	if _, err := storage.ParseDialect(c.Storage.Driver); err != nil {
		return err
	}
	if strings.TrimSpace(c.Storage.DSN) == "" {
		return errors.New("database DSN is required")
	}

	if _, err := c.Observability.Level(); err != nil {
		return err
	}

	otel := c.Observability.OTel
	if otel.Enabled {
		if otel.Endpoint == "" {
			return errors.New("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if otel.ServiceName == "" {
			return errors.New("OpenTelemetry service name is required when OTel is enabled")
		}
	}
	if otel.SampleRatio < 0 || otel.SampleRatio > 1 {
		return fmt.Errorf("OpenTelemetry sample ratio must be within [0, 1], got %v", otel.SampleRatio)
	}

	return nil
}

// envReader applies set environment variables onto config fields and
// collects parse failures so they are reported together.
type envReader struct {
	errs []error
}

func (e *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *envReader) fail(key, value string, err error) {
	e.errs = append(e.errs, fmt.Errorf("invalid %s %q: %w", key, value, err))
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.lookup(key); ok {
		*dst = v
	}
}

func (e *envReader) bool(key string, dst *bool) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = b
}

func (e *envReader) int(key string, dst *int) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = n
}

func (e *envReader) int64(key string, dst *int64) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = n
}

func (e *envReader) float(key string, dst *float64) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = f
}

func (e *envReader) duration(key string, dst *time.Duration) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = d
}

func (e *envReader) err() error {
	return errors.Join(e.errs...)
}
