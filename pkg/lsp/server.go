// Package lsp provides a Language Server Protocol server that publishes
// codescribe diagnostics for open documents and answers hovers with the
// plain-language explanation of the document.
package lsp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/codescribe/pkg/analysis"
	"github.com/Sumatoshi-tech/codescribe/pkg/engine"
	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
)

const (
	serverName       = "codescribe"
	diagnosticSource = "codescribe"

	methodPublishDiagnostics = "textDocument/publishDiagnostics"
)

// ServerDeps holds injectable dependencies for the LSP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Engine runs analyses. Nil uses an uncached engine.
	Engine *engine.Engine

	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Tracer creates a span per document event. Nil disables tracing.
	Tracer trace.Tracer

	// Version is reported in the server info. Empty reports "dev".
	Version string
}

// Server implements the codescribe LSP server.
type Server struct {
	store   *DocumentStore
	engine  *engine.Engine
	logger  *slog.Logger
	tracer  trace.Tracer
	version string
	handler protocol.Handler
}

// NewServer creates a new LSP server with default handlers.
func NewServer(deps ServerDeps) *Server {
	srv := &Server{
		store:   NewDocumentStore(),
		engine:  deps.Engine,
		logger:  deps.Logger,
		tracer:  deps.Tracer,
		version: deps.Version,
	}

	if srv.logger == nil {
		srv.logger = slog.Default()
	}

	if srv.tracer == nil {
		srv.tracer = nooptrace.NewTracerProvider().Tracer(serverName)
	}

	if srv.engine == nil {
		srv.engine = engine.New(engine.Deps{Logger: srv.logger, Tracer: srv.tracer})
	}

	if srv.version == "" {
		srv.version = "dev"
	}

	srv.handler = protocol.Handler{
		Initialize:            srv.initialize,
		Initialized:           srv.initialized,
		Shutdown:              srv.shutdown,
		SetTrace:              srv.setTrace,
		TextDocumentDidOpen:   srv.didOpen,
		TextDocumentDidChange: srv.didChange,
		TextDocumentDidSave:   srv.didSave,
		TextDocumentDidClose:  srv.didClose,
		TextDocumentHover:     srv.hover,
	}

	return srv
}

// Run starts the LSP server on stdio. It blocks until the client exits.
func (srv *Server) Run() error {
	lspServer := server.NewServer(&srv.handler, serverName, false)

	err := lspServer.RunStdio()
	if err != nil {
		return fmt.Errorf("lsp server: %w", err)
	}

	return nil
}

func (srv *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()

	// Documents are re-analyzed whole; ask for full text on every change.
	if syncOpts, ok := capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions); ok {
		full := protocol.TextDocumentSyncKindFull
		syncOpts.Change = &full
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &srv.version,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	srv.engine.ResetCache()

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI

	srv.store.Open(uri, Document{
		Text:       params.TextDocument.Text,
		LanguageID: params.TextDocument.LanguageID,
	})
	srv.publishDiagnostics(ctx, uri)

	return nil
}

func (srv *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	for _, change := range params.ContentChanges {
		text, ok := fullText(change)
		if !ok {
			continue
		}

		srv.store.Update(uri, text)
	}

	_, span := srv.tracer.Start(context.Background(), observability.SpanLSPDidChange,
		trace.WithAttributes(attribute.String("lsp.uri", uri)),
	)
	defer span.End()

	srv.publishDiagnostics(ctx, uri)

	return nil
}

// fullText extracts the document text from a whole-document change event.
// Ranged events are skipped; the server only advertises full sync.
func fullText(change any) (string, bool) {
	switch event := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		return event.Text, true
	case protocol.TextDocumentContentChangeEvent:
		if event.Range == nil {
			return event.Text, true
		}
	case map[string]any:
		if _, ranged := event["range"]; ranged {
			return "", false
		}

		text, ok := event["text"].(string)

		return text, ok
	}

	return "", false
}

func (srv *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI

	if params.Text != nil {
		srv.store.Update(uri, *params.Text)
	}

	if _, ok := srv.store.Get(uri); ok {
		srv.publishDiagnostics(ctx, uri)
	}

	return nil
}

func (srv *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	srv.store.Delete(uri)

	// Clear stale diagnostics for the closed document.
	ctx.Notify(methodPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})

	return nil
}

func (srv *Server) hover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, ok := srv.store.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil // LSP protocol expects nil hover when no document found.
	}

	res, err := srv.analyze(doc)
	if err != nil {
		return nil, nil //nolint:nilerr,nilnil // Blank documents have nothing to explain.
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: hoverText(res, int(params.Position.Line)+1),
		},
	}, nil
}

// hoverText is the readable explanation followed by whatever the analysis
// found on the hovered line.
func hoverText(res *analysis.Result, line int) string {
	var sb strings.Builder

	sb.WriteString(res.ReadableExplanation)

	notes := lineNotes(res, line)
	if len(notes) > 0 {
		sb.WriteString("\n\n---\n")

		for _, note := range notes {
			sb.WriteString("\n- ")
			sb.WriteString(note)
		}
	}

	return sb.String()
}

func lineNotes(res *analysis.Result, line int) []string {
	var notes []string

	for _, fn := range res.Structure.Functions {
		if fn.Line == line {
			notes = append(notes, fmt.Sprintf("function `%s` (%s)", fn.Name, fn.Kind))
		}
	}

	for _, v := range res.Structure.Variables {
		if v.Line == line {
			notes = append(notes, fmt.Sprintf("variable `%s` (%s)", v.Name, v.Kind))
		}
	}

	for _, loop := range res.Structure.Loops {
		if loop.Line == line {
			notes = append(notes, loop.Kind+" loop")
		}
	}

	for _, cond := range res.Structure.Conditionals {
		if cond.Line == line {
			notes = append(notes, cond.Kind+" conditional")
		}
	}

	for _, imp := range res.Structure.Imports {
		if imp.Line == line {
			notes = append(notes, fmt.Sprintf("imports `%s`", imp.Module))
		}
	}

	return notes
}

func (srv *Server) analyze(doc Document) (*analysis.Result, error) {
	return srv.engine.Submit(context.Background(), analysis.Request{
		Code:     doc.Text,
		Language: doc.LanguageID,
	})
}

func (srv *Server) publishDiagnostics(ctx *glsp.Context, uri string) {
	diagnostics := []protocol.Diagnostic{}

	doc, ok := srv.store.Get(uri)
	if ok {
		res, err := srv.analyze(doc)
		if err == nil {
			diagnostics = toDiagnostics(res, doc.Text)
		}
	}

	srv.logger.Debug("publishing diagnostics", "uri", uri, "count", len(diagnostics))

	ctx.Notify(methodPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// toDiagnostics maps analysis findings onto whole-line LSP diagnostics.
// Syntax findings are errors and style findings are warnings.
func toDiagnostics(res *analysis.Result, text string) []protocol.Diagnostic {
	lines := strings.Split(text, "\n")
	source := diagnosticSource
	out := make([]protocol.Diagnostic, 0, len(res.Errors))

	for _, finding := range res.Errors {
		idx := finding.Line - 1
		if idx < 0 || idx >= len(lines) {
			continue
		}

		severity := protocol.DiagnosticSeverityWarning
		if finding.Kind == analysis.DiagnosticSyntax {
			severity = protocol.DiagnosticSeverityError
		}

		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: protocol.UInteger(idx), Character: 0},
				End:   protocol.Position{Line: protocol.UInteger(idx), Character: utf16Len(lines[idx])},
			},
			Severity: &severity,
			Source:   &source,
			Message:  finding.Message,
		})
	}

	return out
}

// utf16Len is the length of s in UTF-16 code units, the LSP column unit.
func utf16Len(s string) protocol.UInteger {
	var n protocol.UInteger

	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}

	return n
}
