package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Values of the status attribute on request metrics.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

const (
	metricRequests = "codescribe.requests.total"
	metricDuration = "codescribe.request.duration.seconds"
	metricErrors   = "codescribe.errors.total"
	metricInflight = "codescribe.inflight.requests"

	metricAttrOp     = "op"
	metricAttrStatus = "status"
)

// requestSeconds spans a cached lookup (100µs) to a very large file (10s).
var requestSeconds = []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10}

// REDMetrics counts rate, errors and duration for HTTP routes and MCP tools.
// The op attribute is "METHOD /path" or "mcp.<tool>".
type REDMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
	inflight metric.Int64UpDownCounter
}

// NewREDMetrics registers the request instruments on mt.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	in := &instruments{meter: mt}

	red := &REDMetrics{
		requests: in.counter(metricRequests, "Requests served", "{request}"),
		duration: in.floatHistogram(metricDuration, "Request latency", "s", requestSeconds),
		errors:   in.counter(metricErrors, "Requests that failed", "{error}"),
		inflight: in.upDown(metricInflight, "Requests in progress", "{request}"),
	}
	if in.err != nil {
		return nil, in.err
	}

	return red, nil
}

// RecordRequest records one finished request. A nil receiver does nothing.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, elapsed time.Duration) {
	if rm == nil {
		return
	}

	opAttr := attribute.String(metricAttrOp, op)
	attrs := metric.WithAttributes(opAttr, attribute.String(metricAttrStatus, status))

	rm.requests.Add(ctx, 1, attrs)
	rm.duration.Record(ctx, elapsed.Seconds(), attrs)

	if status == StatusError {
		rm.errors.Add(ctx, 1, metric.WithAttributes(opAttr))
	}
}

// TrackInflight counts op as in progress until the returned func is called.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	if rm == nil {
		return func() {}
	}

	attrs := metric.WithAttributes(attribute.String(metricAttrOp, op))
	rm.inflight.Add(ctx, 1, attrs)

	return func() { rm.inflight.Add(ctx, -1, attrs) }
}
