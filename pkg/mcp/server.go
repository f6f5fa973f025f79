// Package mcp serves the codescribe analyzer, error check and narration as
// Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/codescribe/pkg/engine"
	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
)

const (
	implementationName = "codescribe"

	// toolOpPrefix prefixes span names and the RED op attribute.
	toolOpPrefix = "mcp."

	attrTool = "mcp.tool"
)

// ServerDeps are the collaborators of a Server. Every field is optional.
type ServerDeps struct {
	// Engine defaults to an uncached engine sharing Logger and Tracer.
	Engine *engine.Engine

	// Version is advertised to clients; empty advertises "dev".
	Version string

	Logger  *slog.Logger
	Metrics *observability.REDMetrics

	// Tracer opens one span per tool call. When the span is sampled its
	// trace ID is appended to the tool result.
	Tracer trace.Tracer
}

// Server is the codescribe MCP server.
type Server struct {
	inner   *mcpsdk.Server
	engine  *engine.Engine
	metrics *observability.REDMetrics
	tracer  trace.Tracer
	tools   []string
}

// NewServer builds a server with the analyze, check and narrate tools.
func NewServer(deps ServerDeps) *Server {
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	eng := deps.Engine
	if eng == nil {
		eng = engine.New(engine.Deps{Logger: deps.Logger, Tracer: deps.Tracer})
	}

	srv := &Server{
		inner: mcpsdk.NewServer(
			&mcpsdk.Implementation{Name: implementationName, Version: version},
			&mcpsdk.ServerOptions{Logger: deps.Logger},
		),
		engine:  eng,
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
	}

	addTool(srv, ToolNameAnalyze, analyzeToolDescription, srv.handleAnalyze)
	addTool(srv, ToolNameCheck, checkToolDescription, srv.handleCheck)
	addTool(srv, ToolNameNarrate, narrateToolDescription, srv.handleNarrate)

	return srv
}

// ListToolNames returns the registered tool names in sorted order.
func (s *Server) ListToolNames() []string {
	return slices.Sorted(slices.Values(s.tools))
}

// Run serves on stdin/stdout until ctx is canceled or the client hangs up.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves on transport until ctx is canceled or the
// transport closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func addTool[In any](
	s *Server, name, description string,
	handler func(context.Context, *mcpsdk.CallToolRequest, In) (*mcpsdk.CallToolResult, ToolOutput, error),
) {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{Name: name, Description: description}, instrument(s, name, handler))
	s.tools = append(s.tools, name)
}

// instrument wraps a tool handler with its span and RED metrics. A result
// with IsError set counts as an error.
func instrument[In any](
	s *Server, name string,
	handler func(context.Context, *mcpsdk.CallToolRequest, In) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, In) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if s.tracer == nil && s.metrics == nil {
		return handler
	}

	op := toolOpPrefix + name

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, in In) (*mcpsdk.CallToolResult, ToolOutput, error) {
		started := time.Now()

		span := trace.SpanFromContext(ctx)
		if s.tracer != nil {
			ctx, span = s.tracer.Start(ctx, op,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.String(attrTool, name)),
			)
			defer span.End()
		}

		finish := s.metrics.TrackInflight(ctx, op)
		defer finish()

		result, out, err := handler(ctx, req, in)

		status := observability.StatusOK
		if err != nil || (result != nil && result.IsError) {
			status = observability.StatusError
		}

		s.metrics.RecordRequest(ctx, op, status, time.Since(started))

		if sc := span.SpanContext(); s.tracer != nil && sc.IsSampled() && result != nil {
			result.Content = append(result.Content, &mcpsdk.TextContent{Text: "trace_id=" + sc.TraceID().String()})
		}

		return result, out, err
	}
}

const (
	analyzeToolDescription = "Analyze a source snippet with line-pattern heuristics. " +
		"Returns declared functions and variables, loops, conditionals, comments, imports, " +
		"line counts, a complexity tier, heuristic diagnostics and a plain-language explanation. " +
		"Languages: javascript, typescript, python; anything else gets line counts only."

	checkToolDescription = "Check a source snippet for likely mistakes " +
		"(mismatched brackets, missing semicolons, inconsistent Python indentation) " +
		"and return a one-sentence summary."

	narrateToolDescription = "Render a source snippet as text for a screen reader. " +
		"Reads the whole snippet, a single line, or the changes from a previous version."
)
