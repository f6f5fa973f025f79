package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/codescribe/pkg/analysis"
	"github.com/Sumatoshi-tech/codescribe/pkg/mcp"
	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
)

// connect starts srv on an in-memory transport and returns a client session.
func connect(t *testing.T, srv *mcp.Server) *mcpsdk.ClientSession {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return session
}

func callTool(t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	return result
}

func firstText(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)

	return text.Text
}

func TestMCPServer_ListToolNames(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{})

	assert.Equal(t, []string{
		mcp.ToolNameAnalyze,
		mcp.ToolNameCheck,
		mcp.ToolNameNarrate,
	}, srv.ListToolNames())
}

func TestMCPServer_InMemoryTransport_ToolsList(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{Version: "1.2.3"}))

	toolsResult, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	toolNames := make([]string, 0, len(toolsResult.Tools))
	for _, tool := range toolsResult.Tools {
		toolNames = append(toolNames, tool.Name)
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}

	assert.ElementsMatch(t, []string{"codescribe_analyze", "codescribe_check", "codescribe_narrate"}, toolNames)
}

func TestMCPServer_CallAnalyze(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := callTool(t, session, mcp.ToolNameAnalyze, map[string]any{
		"code":     "def add(a, b):\n    return a + b\n",
		"language": "python",
	})
	require.False(t, result.IsError)

	var res analysis.Result
	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &res))

	require.Len(t, res.Structure.Functions, 1)
	assert.Equal(t, "add", res.Structure.Functions[0].Name)
	assert.Equal(t, 3, res.Summary.TotalLines)
}

func TestMCPServer_CallAnalyze_DefaultsToJavaScript(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := callTool(t, session, mcp.ToolNameAnalyze, map[string]any{
		"code": "const add = (a, b) => a + b;",
	})
	require.False(t, result.IsError)

	var res analysis.Result
	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &res))
	require.Len(t, res.Structure.Functions, 1)
	assert.Equal(t, analysis.KindArrow, res.Structure.Functions[0].Kind)
}

func TestMCPServer_InputErrors(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{name: "empty analyze", tool: mcp.ToolNameAnalyze, args: map[string]any{"code": ""}, want: "code parameter is required"},
		{name: "blank analyze", tool: mcp.ToolNameAnalyze, args: map[string]any{"code": "  \n"}, want: "no code provided"},
		{name: "empty check", tool: mcp.ToolNameCheck, args: map[string]any{"code": ""}, want: "code parameter is required"},
		{name: "line past end", tool: mcp.ToolNameNarrate, args: map[string]any{"code": "a", "line": 4}, want: "line out of range"},
		{name: "negative line", tool: mcp.ToolNameNarrate, args: map[string]any{"code": "a", "line": -1}, want: "must not be negative"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result := callTool(t, session, tc.tool, tc.args)
			assert.True(t, result.IsError)
			assert.Contains(t, firstText(t, result), tc.want)
		})
	}
}

func TestMCPServer_CallCheck(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := callTool(t, session, mcp.ToolNameCheck, map[string]any{
		"code":     "def f():\n   return 1\n",
		"language": "py",
	})
	require.False(t, result.IsError)

	var res analysis.CheckResult
	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &res))
	assert.True(t, res.HasErrors)
	assert.Contains(t, res.Summary, "Line 2: Inconsistent indentation")
}

func TestMCPServer_CallNarrate(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := callTool(t, session, mcp.ToolNameNarrate, map[string]any{"code": "f(x);"})
	require.False(t, result.IsError)
	assert.Equal(t,
		"Line 1: f opening parenthesis x closing parenthesis  semicolon ",
		firstText(t, result))

	result = callTool(t, session, mcp.ToolNameNarrate, map[string]any{"code": "a\nb", "previous": "a"})
	require.False(t, result.IsError)
	assert.Equal(t, "1 line added and 0 lines removed. Line 2 added: b.", firstText(t, result))
}

func TestMCPServer_Telemetry(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	session := connect(t, mcp.NewServer(mcp.ServerDeps{
		Tracer:  tp.Tracer("test"),
		Metrics: red,
	}))

	result := callTool(t, session, mcp.ToolNameCheck, map[string]any{"code": "let x = 1;"})
	require.False(t, result.IsError)

	last, ok := result.Content[len(result.Content)-1].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, last.Text, "trace_id=")

	names := make([]string, 0)
	for _, span := range exporter.GetSpans() {
		names = append(names, span.Name)
	}

	assert.Contains(t, names, "mcp.codescribe_check")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.NotEmpty(t, rm.ScopeMetrics)
}
