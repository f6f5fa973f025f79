package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// Span names used across codescribe.
const (
	// SpanLiveMessage covers one message on the live WebSocket.
	SpanLiveMessage = "codescribe.live.message"
	// SpanLSPDidChange covers one textDocument/didChange notification.
	SpanLSPDidChange = "codescribe.lsp.did_change"
	// SpanAnalyzeInline covers one engine analysis.
	SpanAnalyzeInline = "codescribe.analysis.run"
)

// Unless TraceVerbose is set, live messages and editor keystrokes are not
// exported, and analysis spans are exported only below a recording parent
// such as an HTTP request or an MCP tool call.
var (
	perMessageSpans = map[string]struct{}{
		SpanLiveMessage:  {},
		SpanLSPDidChange: {},
	}
	childOnlySpans = map[string]struct{}{
		SpanAnalyzeInline: {},
	}
)

type filteringTracerProvider struct {
	embedded.TracerProvider

	delegate trace.TracerProvider
	noop     trace.TracerProvider
}

// NewFilteringTracerProvider wraps delegate so that per-message spans are
// replaced by no-op spans.
func NewFilteringTracerProvider(delegate trace.TracerProvider) trace.TracerProvider {
	return &filteringTracerProvider{
		delegate: delegate,
		noop:     nooptrace.NewTracerProvider(),
	}
}

func (p *filteringTracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return &filteringTracer{
		delegate: p.delegate.Tracer(name, opts...),
		noop:     p.noop.Tracer(name, opts...),
	}
}

type filteringTracer struct {
	embedded.Tracer

	delegate trace.Tracer
	noop     trace.Tracer
}

func (t *filteringTracer) Start(
	ctx context.Context, name string, opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if suppressed(ctx, name) {
		return t.noop.Start(ctx, name, opts...)
	}

	return t.delegate.Start(ctx, name, opts...)
}

func suppressed(ctx context.Context, name string) bool {
	if _, ok := perMessageSpans[name]; ok {
		return true
	}

	if _, ok := childOnlySpans[name]; ok {
		return !trace.SpanFromContext(ctx).IsRecording()
	}

	return false
}
