package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
)

func TestInit_ZeroConfig(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.LogWriter = io.Discard

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)
	assert.Nil(t, providers.MetricsHandler)

	_, span := providers.Tracer.Start(context.Background(), observability.SpanAnalyzeInline)
	assert.False(t, span.IsRecording())
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_PrometheusScrape(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.Mode = observability.ModeServe
	cfg.Prometheus = true
	cfg.LogWriter = io.Discard

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })
	require.NotNil(t, providers.MetricsHandler)

	red, err := observability.NewREDMetrics(providers.Meter)
	require.NoError(t, err)

	red.RecordRequest(context.Background(), "POST /api/error-check", observability.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	providers.MetricsHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "codescribe_requests_total")
	assert.Contains(t, body, `op="POST /api/error-check"`)
	assert.Contains(t, body, "go_goroutines")
}

func TestInit_LogsToConfiguredWriter(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.Mode = observability.ModeMCP
	cfg.ServiceVersion = "1.4.0"
	cfg.Environment = "staging"
	cfg.LogJSON = true
	cfg.LogLevel = slog.LevelDebug
	cfg.LogWriter = &out

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	providers.Logger.Debug("tool called", "tool", "codescribe_check")
	require.NoError(t, providers.Shutdown(context.Background()))

	var record map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &record))

	assert.Equal(t, "tool called", record["msg"])
	assert.Equal(t, "codescribe", record["service"])
	assert.Equal(t, "mcp", record["mode"])
	assert.Equal(t, "staging", record["env"])
	assert.Equal(t, "codescribe_check", record["tool"])
}

func TestBuildResource(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = "0.3.1"
	cfg.Environment = "dev"
	cfg.Mode = observability.ModeLSP

	res, err := observability.ProbeBuildResource(cfg)
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}

	assert.Equal(t, "codescribe", attrs["service.name"])
	assert.Equal(t, "0.3.1", attrs["service.version"])
	assert.Equal(t, "dev", attrs["deployment.environment"])
	assert.Equal(t, "lsp", attrs["codescribe.mode"])
}

func TestSelectSampler_Config(t *testing.T) {
	t.Parallel()

	debug := observability.DefaultConfig()
	debug.DebugTrace = true
	debug.SampleRatio = 0.0001

	assert.True(t, observability.ProbeSamplerSpan(debug))
	assert.True(t, observability.ProbeSamplerSpan(observability.DefaultConfig()))
}

//nolint:paralleltest // t.Setenv.
func TestSelectSampler_Environment(t *testing.T) {
	tests := []struct {
		sampler string
		arg     string
		want    bool
	}{
		{sampler: "always_off", want: false},
		{sampler: "always_on", want: true},
		{sampler: "parentbased_always_off", want: false},
		{sampler: "parentbased_always_on", want: true},
		{sampler: "traceidratio", arg: "0", want: false},
		{sampler: "parentbased_traceidratio", arg: "1", want: true},
		{sampler: "unheard_of", want: true},
	}

	for _, tc := range tests {
		t.Run(tc.sampler, func(t *testing.T) {
			t.Setenv("OTEL_TRACES_SAMPLER", tc.sampler)
			t.Setenv("OTEL_TRACES_SAMPLER_ARG", tc.arg)

			assert.Equal(t, tc.want, observability.ProbeSamplerSpan(observability.DefaultConfig()))
		})
	}
}

//nolint:paralleltest // t.Setenv.
func TestSelectSampler_DebugBeatsEnvironment(t *testing.T) {
	t.Setenv("OTEL_TRACES_SAMPLER", "always_off")

	cfg := observability.DefaultConfig()
	cfg.DebugTrace = true

	assert.True(t, observability.ProbeSamplerSpan(cfg))
}

func TestSamplerRatio(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.25, observability.ProbeSamplerRatio("0.25"), 1e-9)
	assert.InDelta(t, 0.0, observability.ProbeSamplerRatio("0"), 1e-9)
	assert.InDelta(t, 1.0, observability.ProbeSamplerRatio(""), 1e-9)
	assert.InDelta(t, 1.0, observability.ProbeSamplerRatio("half"), 1e-9)
	assert.InDelta(t, 1.0, observability.ProbeSamplerRatio("1.5"), 1e-9)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: " WARN ", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "info+2", want: slog.LevelInfo + 2},
		{in: "loud", want: slog.LevelInfo, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()

			got, err := observability.ParseLevel(tc.in)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{name: "empty", raw: ""},
		{name: "single", raw: "authorization=Bearer abc", want: map[string]string{"authorization": "Bearer abc"}},
		{
			name: "trimmed pairs",
			raw:  " x-team = scribe , x-env=dev ",
			want: map[string]string{"x-team": "scribe", "x-env": "dev"},
		},
		{name: "value with equals", raw: "sig=a=b", want: map[string]string{"sig": "a=b"}},
		{name: "malformed only", raw: "novalue,=orphan"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, observability.ParseOTLPHeaders(tc.raw))
		})
	}
}
