package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// Log attribute keys.
const (
	logKeyTraceID   = "trace_id"
	logKeySpanID    = "span_id"
	logKeyRequestID = "request_id"
	logKeyService   = "service"
	logKeyEnv       = "env"
	logKeyMode      = "mode"
)

type requestIDKey struct{}

// ContextWithRequestID stores the request ID the HTTP layer assigned.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the ID stored by ContextWithRequestID or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)

	return id
}

// contextAttrs lists what TracingHandler pulls out of a record's context.
var contextAttrs = []func(ctx context.Context) []slog.Attr{
	func(ctx context.Context) []slog.Attr {
		sc := trace.SpanContextFromContext(ctx)
		if !sc.IsValid() {
			return nil
		}

		return []slog.Attr{
			slog.String(logKeyTraceID, sc.TraceID().String()),
			slog.String(logKeySpanID, sc.SpanID().String()),
		}
	},
	func(ctx context.Context) []slog.Attr {
		id := RequestIDFromContext(ctx)
		if id == "" {
			return nil
		}

		return []slog.Attr{slog.String(logKeyRequestID, id)}
	},
}

// TracingHandler decorates records with the active trace, the request ID
// and the service identity so that logs join up with spans.
type TracingHandler struct {
	next slog.Handler
}

// NewTracingHandler wraps next. The service identity is bound before any
// group so it stays at the top level of every record.
func NewTracingHandler(next slog.Handler, service, env string, mode AppMode) *TracingHandler {
	identity := []slog.Attr{
		slog.String(logKeyService, service),
		slog.String(logKeyMode, string(mode)),
	}

	if env != "" {
		identity = append(identity, slog.String(logKeyEnv, env))
	}

	return &TracingHandler{next: next.WithAttrs(identity)}
}

func (h *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, extract := range contextAttrs {
		record.AddAttrs(extract(ctx)...)
	}

	err := h.next.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

func (h *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{next: h.next.WithAttrs(attrs)}
}

func (h *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{next: h.next.WithGroup(name)}
}

func newLogger(cfg Config) *slog.Logger {
	out := logWriter(cfg)
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var base slog.Handler = slog.NewTextHandler(out, opts)
	if cfg.LogJSON {
		base = slog.NewJSONHandler(out, opts)
	}

	return slog.New(NewTracingHandler(base, cfg.ServiceName, cfg.Environment, cfg.Mode))
}

func logWriter(cfg Config) io.Writer {
	if cfg.LogWriter != nil {
		return cfg.LogWriter
	}

	return os.Stderr
}
