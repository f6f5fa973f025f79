package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Span attribute keys that carry submitted source text or other payloads.
// They never leave the process.
var contentKeys = map[attribute.Key]struct{}{
	"code":             {},
	"code.previous":    {},
	"source":           {},
	"narration.text":   {},
	"request.body":     {},
	"response.body":    {},
	"live.message":     {},
	"mcp.arguments":    {},
	"lsp.document":     {},
	"http.request.url": {},
}

// exportedNamespaces are the key prefixes codescribe and the HTTP semantic
// conventions produce. Anything else is dropped.
var exportedNamespaces = []string{
	"analysis.",
	"cache.",
	"codescribe.",
	"error.",
	"http.",
	"live.",
	"lsp.",
	"mcp.",
	"server.",
	"url.path",
}

// attributeFilter is a SpanProcessor that hands its delegate a view of each
// ended span with content and unknown attributes removed.
type attributeFilter struct {
	delegate sdktrace.SpanProcessor
	logger   *slog.Logger
	reported sync.Map
}

// NewAttributeFilter wraps delegate with the codescribe export policy. When
// logger is non-nil every removed key is logged once.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{delegate: delegate, logger: logger}
}

func (f *attributeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.delegate.OnStart(parent, s)
}

func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	f.delegate.OnEnd(&policySpan{ReadOnlySpan: s, attrs: f.keep(s.Attributes())})
}

func (f *attributeFilter) Shutdown(ctx context.Context) error {
	err := f.delegate.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	err := f.delegate.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

func (f *attributeFilter) keep(attrs []attribute.KeyValue) []attribute.KeyValue {
	kept := attrs[:0:0]

	for _, kv := range attrs {
		if exportable(kv.Key) {
			kept = append(kept, kv)

			continue
		}

		f.report(kv.Key)
	}

	return kept
}

func (f *attributeFilter) report(key attribute.Key) {
	if f.logger == nil {
		return
	}

	if _, seen := f.reported.LoadOrStore(key, struct{}{}); seen {
		return
	}

	f.logger.Warn("span attribute removed by export policy", "key", string(key))
}

func exportable(key attribute.Key) bool {
	if _, content := contentKeys[key]; content {
		return false
	}

	name := string(key)
	if name == "error" {
		return true
	}

	for _, ns := range exportedNamespaces {
		if strings.HasPrefix(name, ns) {
			return true
		}
	}

	return false
}

// policySpan is a ReadOnlySpan whose attributes were filtered at OnEnd.
type policySpan struct {
	sdktrace.ReadOnlySpan

	attrs []attribute.KeyValue
}

func (s *policySpan) Attributes() []attribute.KeyValue {
	return s.attrs
}
