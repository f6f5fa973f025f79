package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricLines       = "codescribe.analysis.lines"
	metricDiagnostics = "codescribe.analysis.diagnostics.total"
	metricComplexity  = "codescribe.analysis.complexity.total"
	metricCacheHits   = "codescribe.analysis.cache.hits.total"
	metricCacheMisses = "codescribe.analysis.cache.misses.total"

	metricAttrAnalyzer   = "analyzer"
	metricAttrComplexity = "complexity"
	metricAttrKind       = "kind"
)

// submissionLines goes from one-liners to generated files.
var submissionLines = []float64{1, 10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 50000}

// AnalysisMetrics describes what the engine sees: submission sizes, the
// complexity tiers it assigns, findings per kind and cache effectiveness.
type AnalysisMetrics struct {
	lines       metric.Int64Histogram
	diagnostics metric.Int64Counter
	complexity  metric.Int64Counter
	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
}

// AnalysisStats is one finished analysis as reported by the engine.
type AnalysisStats struct {
	Analyzer    string
	TotalLines  int
	Complexity  string
	Diagnostics map[string]int

	// Cached is false when the engine runs without a result cache, in
	// which case CacheHit is ignored.
	Cached   bool
	CacheHit bool
}

// NewAnalysisMetrics registers the analysis instruments on mt.
func NewAnalysisMetrics(mt metric.Meter) (*AnalysisMetrics, error) {
	in := &instruments{meter: mt}

	am := &AnalysisMetrics{
		lines:       in.intHistogram(metricLines, "Lines per submission", "{line}", submissionLines),
		diagnostics: in.counter(metricDiagnostics, "Findings reported", "{diagnostic}"),
		complexity:  in.counter(metricComplexity, "Analyses per complexity tier", "{analysis}"),
		cacheHits:   in.counter(metricCacheHits, "Result cache hits", "{hit}"),
		cacheMisses: in.counter(metricCacheMisses, "Result cache misses", "{miss}"),
	}
	if in.err != nil {
		return nil, in.err
	}

	return am, nil
}

// RecordAnalysis records stats. A nil receiver does nothing.
func (am *AnalysisMetrics) RecordAnalysis(ctx context.Context, stats AnalysisStats) {
	if am == nil {
		return
	}

	analyzer := attribute.String(metricAttrAnalyzer, stats.Analyzer)

	am.lines.Record(ctx, int64(stats.TotalLines), metric.WithAttributes(analyzer))
	am.complexity.Add(ctx, 1, metric.WithAttributes(analyzer, attribute.String(metricAttrComplexity, stats.Complexity)))

	for kind, count := range stats.Diagnostics {
		am.diagnostics.Add(ctx, int64(count), metric.WithAttributes(analyzer, attribute.String(metricAttrKind, kind)))
	}

	switch {
	case !stats.Cached:
	case stats.CacheHit:
		am.cacheHits.Add(ctx, 1)
	default:
		am.cacheMisses.Add(ctx, 1)
	}
}
