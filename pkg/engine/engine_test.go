package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/codescribe/pkg/analysis"
	"github.com/Sumatoshi-tech/codescribe/pkg/cache"
	"github.com/Sumatoshi-tech/codescribe/pkg/engine"
	"github.com/Sumatoshi-tech/codescribe/pkg/narrate"
	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
)

const sampleJS = "// adds\nfunction add(a, b) {\n  return a + b;\n}\n"

func TestEngine_SubmitMatchesAnalyze(t *testing.T) {
	t.Parallel()

	eng := engine.New(engine.Deps{})

	res, err := eng.Submit(context.Background(), analysis.Request{Code: sampleJS})
	require.NoError(t, err)
	assert.Equal(t, analysis.Analyze(sampleJS, "javascript"), res)
}

func TestEngine_SubmitEmpty(t *testing.T) {
	t.Parallel()

	eng := engine.New(engine.Deps{})

	for _, code := range []string{"", "   ", "\n\t\n"} {
		_, err := eng.Submit(context.Background(), analysis.Request{Code: code})
		require.ErrorIs(t, err, analysis.ErrEmptyInput)
	}
}

func TestEngine_DefaultLanguage(t *testing.T) {
	t.Parallel()

	eng := engine.New(engine.Deps{DefaultLanguage: "python"})
	assert.Equal(t, "python", eng.DefaultLanguage())

	res, err := eng.Submit(context.Background(), analysis.Request{Code: "def add(a, b):\n    return a + b\n"})
	require.NoError(t, err)
	require.Len(t, res.Structure.Functions, 1)
	assert.Equal(t, "add", res.Structure.Functions[0].Name)

	assert.Equal(t, analysis.DefaultLanguage, engine.New(engine.Deps{}).DefaultLanguage())
}

func TestEngine_CacheHits(t *testing.T) {
	t.Parallel()

	results, err := cache.New(8)
	require.NoError(t, err)

	eng := engine.New(engine.Deps{Cache: results})
	ctx := context.Background()

	first, err := eng.Submit(ctx, analysis.Request{Code: sampleJS})
	require.NoError(t, err)

	first.Structure.Functions[0].Name = "mutated"

	second, err := eng.Submit(ctx, analysis.Request{Code: sampleJS})
	require.NoError(t, err)
	assert.Equal(t, "add", second.Structure.Functions[0].Name)

	stats := eng.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestEngine_ResetCache(t *testing.T) {
	t.Parallel()

	results, err := cache.New(8)
	require.NoError(t, err)

	eng := engine.New(engine.Deps{Cache: results})

	_, err = eng.Submit(context.Background(), analysis.Request{Code: sampleJS})
	require.NoError(t, err)
	assert.Equal(t, 1, eng.CacheStats().Entries)

	eng.ResetCache()
	assert.Equal(t, 0, eng.CacheStats().Entries)

	engine.New(engine.Deps{}).ResetCache()
}

func TestEngine_RecordsMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	am, err := observability.NewAnalysisMetrics(mp.Meter("test"))
	require.NoError(t, err)

	eng := engine.New(engine.Deps{Metrics: am})

	_, err = eng.Submit(context.Background(), analysis.Request{Code: "if ((x) { y }"})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}

	assert.True(t, names["codescribe.analysis.lines"])
	assert.True(t, names["codescribe.analysis.diagnostics.total"])
	assert.True(t, names["codescribe.analysis.complexity.total"])
}

func TestEngine_TracesAnalysis(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	eng := engine.New(engine.Deps{Tracer: tp.Tracer("test")})

	_, err := eng.Submit(context.Background(), analysis.Request{Code: sampleJS, Language: "ts"})
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, observability.SpanAnalyzeInline, spans[0].Name)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}

	assert.Equal(t, "ts", attrs["analysis.language"])
	assert.Equal(t, analysis.FamilyJavaScript, attrs["analysis.analyzer"])
	assert.Equal(t, "low", attrs["analysis.complexity"])
}

func TestEngine_Check(t *testing.T) {
	t.Parallel()

	eng := engine.New(engine.Deps{})
	ctx := context.Background()

	clean, err := eng.Check(ctx, analysis.Request{Code: "const x = 1;"})
	require.NoError(t, err)
	assert.False(t, clean.HasErrors)
	assert.Equal(t, "No obvious syntax errors detected in the code.", clean.Summary)

	dirty, err := eng.Check(ctx, analysis.Request{Code: "if ((x) { y }"})
	require.NoError(t, err)
	assert.True(t, dirty.HasErrors)
	assert.Contains(t, dirty.Summary, "Line 1: Mismatched parentheses")

	_, err = eng.Check(ctx, analysis.Request{})
	require.ErrorIs(t, err, analysis.ErrEmptyInput)
}

func TestEngine_Narrate(t *testing.T) {
	t.Parallel()

	eng := engine.New(engine.Deps{})
	ctx := context.Background()

	tests := []struct {
		name string
		req  engine.NarrateRequest
		want string
	}{
		{
			name: "transcript",
			req:  engine.NarrateRequest{Code: "a;\n\nb"},
			want: "Line 1: a semicolon . Line 2: Empty line. Line 3: b",
		},
		{
			name: "single line",
			req:  engine.NarrateRequest{Code: "a;\nb = 1", Line: 2},
			want: "Line 2: b = 1",
		},
		{
			name: "blank line",
			req:  engine.NarrateRequest{Code: "a\n\nb", Line: 2},
			want: "Line 2: Empty line",
		},
		{
			name: "changes",
			req:  engine.NarrateRequest{Code: "a\nb", Previous: "a\nb"},
			want: narrate.NoChanges,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := eng.Narrate(ctx, tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Text)
		})
	}
}

func TestEngine_NarrateChanges(t *testing.T) {
	t.Parallel()

	eng := engine.New(engine.Deps{})

	got, err := eng.Narrate(context.Background(), engine.NarrateRequest{Previous: "a\nb", Code: "a\nc"})
	require.NoError(t, err)
	require.Len(t, got.Changes, 2)
	assert.Equal(t, 2, got.Lines)
	assert.Contains(t, got.Text, "1 line added and 1 line removed.")
}

func TestEngine_NarrateErrors(t *testing.T) {
	t.Parallel()

	eng := engine.New(engine.Deps{})
	ctx := context.Background()

	_, err := eng.Narrate(ctx, engine.NarrateRequest{Code: " "})
	require.ErrorIs(t, err, analysis.ErrEmptyInput)

	_, err = eng.Narrate(ctx, engine.NarrateRequest{Code: "a\nb", Line: 3})
	require.ErrorIs(t, err, narrate.ErrLineOutOfRange)
}
