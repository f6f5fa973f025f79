package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
)

func TestExportPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want bool
	}{
		{key: "analysis.language", want: true},
		{key: "analysis.bytes", want: true},
		{key: "cache.hit", want: true},
		{key: "mcp.tool", want: true},
		{key: "live.op", want: true},
		{key: "lsp.uri", want: true},
		{key: "http.request.method", want: true},
		{key: "url.path", want: true},
		{key: "error", want: true},
		{key: "code", want: false},
		{key: "code.previous", want: false},
		{key: "narration.text", want: false},
		{key: "request.body", want: false},
		{key: "live.message", want: false},
		{key: "user.email", want: false},
		{key: "anything.else", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, observability.ProbeExportable(tc.key))
		})
	}
}

func TestAttributeFilter_StripsSourceText(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()

	var logs bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&logs, nil))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(observability.NewAttributeFilter(sdktrace.NewSimpleSpanProcessor(exporter), logger)),
	)

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	for range 2 {
		_, span := tp.Tracer("test").Start(context.Background(), observability.SpanAnalyzeInline)
		span.SetAttributes(
			attribute.String("analysis.language", "python"),
			attribute.String("code", "password = 'hunter2'"),
		)
		span.End()
	}

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	for _, span := range spans {
		assert.Equal(t, []attribute.KeyValue{attribute.String("analysis.language", "python")}, span.Attributes)
	}

	assert.Equal(t, 1, strings.Count(logs.String(), "key=code"))
	assert.NotContains(t, logs.String(), "hunter2")
}

func TestAttributeFilter_SilentWithoutLogger(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(observability.NewAttributeFilter(sdktrace.NewSimpleSpanProcessor(exporter), nil)),
	)

	_, span := tp.Tracer("test").Start(context.Background(), "narrate")
	span.SetAttributes(attribute.String("narration.text", "Line 1: x"))
	span.End()

	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Empty(t, spans[0].Attributes)

	require.NoError(t, tp.Shutdown(context.Background()))
}
