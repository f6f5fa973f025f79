// Package observability wires OpenTelemetry traces and metrics and the slog
// logger used by every codescribe entry point.
package observability

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// AppMode says how the binary was launched. It is attached to the resource
// and to every log record.
type AppMode string

// Launch modes.
const (
	ModeCLI   AppMode = "cli"
	ModeServe AppMode = "serve"
	ModeMCP   AppMode = "mcp"
	ModeLSP   AppMode = "lsp"
)

const (
	defaultServiceName     = "codescribe"
	defaultShutdownTimeout = 5
)

// Config is the observability part of the codescribe configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Mode           AppMode

	// OTLPEndpoint is a gRPC collector address such as "localhost:4317".
	// Traces and pushed metrics are disabled while it is empty.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// Prometheus adds a pull reader served by Providers.MetricsHandler.
	Prometheus bool

	// DebugTrace samples every trace and logs attributes the export
	// policy removes.
	DebugTrace bool

	// SampleRatio applies to root spans when neither DebugTrace nor
	// OTEL_TRACES_SAMPLER decide.
	SampleRatio float64

	// TraceVerbose exports the per-message and per-keystroke spans that are
	// otherwise dropped.
	TraceVerbose bool

	LogLevel slog.Level
	LogJSON  bool

	// LogWriter receives log output. Nil means stderr; stdout belongs to
	// the MCP and LSP protocols.
	LogWriter io.Writer

	ShutdownTimeoutSec int
}

// DefaultConfig is the zero-configuration CLI setup: no exporters, info logs.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeout,
	}
}

// ParseLevel maps debug, info, warn or error (any case, optional offset such
// as "warn+2") to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(strings.TrimSpace(name)))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", name, err)
	}

	return level, nil
}
