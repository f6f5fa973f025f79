// Package engine is the shared entry point of every codescribe boundary.
// It wraps the analyzer with the result cache, a tracing span, analysis
// metrics and fault containment, so that the HTTP server, the MCP and LSP
// servers and the CLI all behave identically.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/codescribe/pkg/analysis"
	"github.com/Sumatoshi-tech/codescribe/pkg/cache"
	"github.com/Sumatoshi-tech/codescribe/pkg/narrate"
	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
	"github.com/Sumatoshi-tech/codescribe/pkg/textutil"
)

// ErrAnalysisFailed wraps an unexpected fault inside an analyzer.
var ErrAnalysisFailed = errors.New("failed to analyze code")

// Deps holds injectable dependencies. Zero-value fields disable the
// corresponding concern.
type Deps struct {
	// Cache memoizes results. Nil analyzes every submission afresh.
	Cache *cache.Results

	// Metrics records per-analysis metrics. Nil disables them.
	Metrics *observability.AnalysisMetrics

	// Tracer creates one span per analysis. Nil uses a no-op tracer.
	Tracer trace.Tracer

	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// DefaultLanguage replaces an empty request language. Empty falls back
	// to analysis.DefaultLanguage.
	DefaultLanguage string
}

// Engine runs analyses on behalf of the boundaries. Safe for concurrent use.
type Engine struct {
	cache           *cache.Results
	metrics         *observability.AnalysisMetrics
	tracer          trace.Tracer
	logger          *slog.Logger
	defaultLanguage string
}

// New creates an Engine.
func New(deps Deps) *Engine {
	eng := &Engine{
		cache:           deps.Cache,
		metrics:         deps.Metrics,
		tracer:          deps.Tracer,
		logger:          deps.Logger,
		defaultLanguage: strings.TrimSpace(deps.DefaultLanguage),
	}

	if eng.tracer == nil {
		eng.tracer = nooptrace.NewTracerProvider().Tracer("codescribe")
	}

	if eng.logger == nil {
		eng.logger = slog.Default()
	}

	if eng.defaultLanguage == "" {
		eng.defaultLanguage = analysis.DefaultLanguage
	}

	return eng
}

// DefaultLanguage is the language used when a request names none.
func (e *Engine) DefaultLanguage() string {
	return e.defaultLanguage
}

// CacheStats reports the result cache statistics.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// ResetCache drops every cached result.
func (e *Engine) ResetCache() {
	e.cache.Purge()
}

// Submit validates and analyzes one request. It returns
// analysis.ErrEmptyInput for blank code and ErrAnalysisFailed when an
// analyzer faults.
func (e *Engine) Submit(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	if strings.TrimSpace(req.Language) == "" {
		req.Language = e.defaultLanguage
	}

	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	family := analysis.Family(req.Language)

	ctx, span := e.tracer.Start(ctx, observability.SpanAnalyzeInline,
		trace.WithAttributes(
			attribute.String("analysis.language", req.Language),
			attribute.String("analysis.analyzer", family),
			attribute.Int("analysis.bytes", len(req.Code)),
		),
	)
	defer span.End()

	res, hit, err := e.run(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.ErrorContext(ctx, "analysis failed",
			"language", req.Language, "analyzer", family, "error", err)

		return nil, err
	}

	span.SetAttributes(
		attribute.Int("analysis.lines", res.Summary.TotalLines),
		attribute.String("analysis.complexity", string(res.Summary.Complexity)),
		attribute.Int("analysis.diagnostics", len(res.Errors)),
		attribute.Bool("cache.hit", hit),
	)

	e.metrics.RecordAnalysis(ctx, statsFor(family, res, hit, e.cache != nil))

	e.logger.DebugContext(ctx, "analysis complete",
		"analyzer", family,
		"lines", res.Summary.TotalLines,
		"complexity", res.Summary.Complexity,
		"diagnostics", len(res.Errors),
		"cache_hit", hit,
	)

	return res, nil
}

// run analyzes through the cache and turns analyzer panics into errors.
func (e *Engine) run(req analysis.Request) (res *analysis.Result, hit bool, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			res, hit = nil, false
			err = fmt.Errorf("%w: %v", ErrAnalysisFailed, recovered)
		}
	}()

	res, hit = e.cache.Lookup(req.Code, req.Language)

	return res, hit, nil
}

func statsFor(family string, res *analysis.Result, hit, cached bool) observability.AnalysisStats {
	diags := make(map[string]int, 2)
	for _, d := range res.Errors {
		diags[string(d.Kind)]++
	}

	return observability.AnalysisStats{
		Analyzer:    family,
		TotalLines:  res.Summary.TotalLines,
		Complexity:  string(res.Summary.Complexity),
		Diagnostics: diags,
		CacheHit:    hit,
		Cached:      cached,
	}
}

// Check analyzes req and summarizes its diagnostics.
func (e *Engine) Check(ctx context.Context, req analysis.Request) (analysis.CheckResult, error) {
	res, err := e.Submit(ctx, req)
	if err != nil {
		return analysis.CheckResult{}, err
	}

	return analysis.Check(res), nil
}

// NarrateRequest asks for spoken text about code. Line selects a single
// 1-based line; Previous, when set, narrates the changes from Previous to
// Code. With neither, the whole code is read.
type NarrateRequest struct {
	Code     string `json:"code"               yaml:"code"`
	Previous string `json:"previous,omitempty" yaml:"previous,omitempty"`
	Line     int    `json:"line,omitempty"     yaml:"line,omitempty"`
}

// Narration is the spoken rendering of a NarrateRequest.
type Narration struct {
	Text    string           `json:"text"              yaml:"text"`
	Changes []narrate.Change `json:"changes,omitempty" yaml:"changes,omitempty"`
	Lines   int              `json:"lines"             yaml:"lines"`
}

// Narrate renders req as spoken text. It returns analysis.ErrEmptyInput for
// blank code and narrate.ErrLineOutOfRange for a line outside the code.
func (e *Engine) Narrate(ctx context.Context, req NarrateRequest) (Narration, error) {
	if strings.TrimSpace(req.Code) == "" && req.Previous == "" {
		return Narration{}, analysis.ErrEmptyInput
	}

	_, span := e.tracer.Start(ctx, "codescribe.narrate",
		trace.WithAttributes(attribute.Int("analysis.bytes", len(req.Code))),
	)
	defer span.End()

	out := Narration{Lines: textutil.SegmentCount(req.Code)}

	switch {
	case req.Previous != "":
		out.Changes = narrate.Changes(req.Previous, req.Code)
		out.Text = narrate.DescribeChanges(req.Previous, req.Code)
	case req.Line != 0:
		cursor := narrate.NewCursor(req.Code)
		if err := cursor.Seek(req.Line); err != nil {
			span.RecordError(err)

			return Narration{}, err
		}

		out.Text = cursor.Current()
	default:
		out.Text = narrate.Transcript(req.Code)
	}

	return out, nil
}
