// Package config provides configuration loading and validation for codescribe.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
)

// Sentinel validation errors.
var (
	ErrInvalidPort         = errors.New("invalid server port")
	ErrInvalidBodySize     = errors.New("invalid max body size")
	ErrInvalidCacheEntries = errors.New("cache entries must not be negative")
	ErrInvalidLogFormat    = errors.New("log format must be json or text")
	ErrInvalidSampleRatio  = errors.New("sample ratio must be within [0, 1]")
	ErrEmptyLanguage       = errors.New("default language must not be empty")
)

// Default configuration values.
const (
	defaultPort         = 8080
	defaultHost         = "0.0.0.0"
	defaultMaxBodySize  = "10MB"
	defaultPingMessage  = "ping"
	defaultCORSOrigin   = "*"
	defaultLanguage     = "javascript"
	defaultCacheEntries = 512
	maxPort             = 65535

	// legacyPingEnv is honoured when the prefixed variable is unset.
	legacyPingEnv = "PING_MESSAGE"
)

// Config holds all configuration for codescribe.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	PingMessage  string        `mapstructure:"ping_message"`
	CORSOrigin   string        `mapstructure:"cors_origin"`
	MaxBodySize  string        `mapstructure:"max_body_size"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Port         int           `mapstructure:"port"`
	Gzip         bool          `mapstructure:"gzip"`
}

// Addr is the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MaxBodyBytes parses MaxBodySize ("10MB", "512KiB", ...).
func (s ServerConfig) MaxBodyBytes() (int64, error) {
	n, err := humanize.ParseBytes(s.MaxBodySize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidBodySize, s.MaxBodySize, err)
	}

	if n == 0 || n > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBodySize, s.MaxBodySize)
	}

	return int64(n), nil
}

// AnalysisConfig holds analyzer configuration.
type AnalysisConfig struct {
	DefaultLanguage string `mapstructure:"default_language"`
	CacheEntries    int    `mapstructure:"cache_entries"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export configuration.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	Prometheus   bool    `mapstructure:"prometheus"`
	TraceVerbose bool    `mapstructure:"trace_verbose"`
}

// LoadConfig loads configuration from defaults, an optional config file,
// a .env file in the working directory and CODESCRIBE_* environment
// variables, in increasing precedence.
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("config")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/codescribe")
	}

	viperCfg.SetEnvPrefix("CODESCRIBE")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	if os.Getenv("CODESCRIBE_SERVER_PING_MESSAGE") == "" && !viperCfg.InConfig("server.ping_message") {
		if legacy := os.Getenv(legacyPingEnv); legacy != "" {
			config.Server.PingMessage = legacy
		}
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	// Server defaults.
	viperCfg.SetDefault("server.port", defaultPort)
	viperCfg.SetDefault("server.host", defaultHost)
	viperCfg.SetDefault("server.read_timeout", "30s")
	viperCfg.SetDefault("server.write_timeout", "30s")
	viperCfg.SetDefault("server.idle_timeout", "60s")
	viperCfg.SetDefault("server.max_body_size", defaultMaxBodySize)
	viperCfg.SetDefault("server.ping_message", defaultPingMessage)
	viperCfg.SetDefault("server.cors_origin", defaultCORSOrigin)
	viperCfg.SetDefault("server.gzip", true)

	// Analysis defaults.
	viperCfg.SetDefault("analysis.default_language", defaultLanguage)
	viperCfg.SetDefault("analysis.cache_entries", defaultCacheEntries)

	// Logging defaults.
	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", "json")

	// Telemetry defaults.
	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
	viperCfg.SetDefault("telemetry.environment", "")
	viperCfg.SetDefault("telemetry.prometheus", true)
	viperCfg.SetDefault("telemetry.trace_verbose", false)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, config.Server.Port)
	}

	if _, err := config.Server.MaxBodyBytes(); err != nil {
		return err
	}

	if config.Analysis.CacheEntries < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheEntries, config.Analysis.CacheEntries)
	}

	if strings.TrimSpace(config.Analysis.DefaultLanguage) == "" {
		return ErrEmptyLanguage
	}

	switch config.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	if config.Telemetry.SampleRatio < 0 || config.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, config.Telemetry.SampleRatio)
	}

	return nil
}

// Observability converts the logging and telemetry sections into the
// observability configuration for the given mode.
func (c *Config) Observability(mode observability.AppMode, version string) (observability.Config, error) {
	level, err := observability.ParseLevel(c.Logging.Level)
	if err != nil {
		return observability.Config{}, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version
	obsCfg.Environment = c.Telemetry.Environment
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(c.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = c.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = c.Telemetry.SampleRatio
	obsCfg.TraceVerbose = c.Telemetry.TraceVerbose
	obsCfg.Prometheus = c.Telemetry.Prometheus && mode == observability.ModeServe
	obsCfg.LogLevel = level
	obsCfg.LogJSON = c.Logging.Format == "json"

	return obsCfg, nil
}
