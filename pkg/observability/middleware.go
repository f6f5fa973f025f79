package observability

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	attrURLPath          = "url.path"
	attrResponseBodySize = "http.response.body.size"
)

var errNoHijacker = errors.New("response writer cannot be hijacked")

// spanRecorder remembers the status and body size a handler produced.
type spanRecorder struct {
	http.ResponseWriter

	status int
	bytes  int
}

func (sr *spanRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}

	sr.ResponseWriter.WriteHeader(code)
}

func (sr *spanRecorder) Write(buf []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}

	n, err := sr.ResponseWriter.Write(buf)
	sr.bytes += n

	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}

	return n, nil
}

// Hijack supports the live WebSocket upgrade, which is reported as 101.
func (sr *spanRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := sr.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errNoHijacker
	}

	if sr.status == 0 {
		sr.status = http.StatusSwitchingProtocols
	}

	conn, rw, err := hj.Hijack()
	if err != nil {
		return nil, nil, fmt.Errorf("hijack: %w", err)
	}

	return conn, rw, nil
}

func (sr *spanRecorder) Flush() {
	if fl, ok := sr.ResponseWriter.(http.Flusher); ok {
		fl.Flush()
	}
}

func (sr *spanRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// statusCode is what the client saw; handlers that write nothing answer 200.
func (sr *spanRecorder) statusCode() int {
	if sr.status == 0 {
		return http.StatusOK
	}

	return sr.status
}

// HTTPMiddleware opens a server span per request, continuing any W3C trace
// context the caller sent, and records RED metrics under "METHOD /path".
// Only 5xx answers count as errors; 4xx are the caller's problem.
func HTTPMiddleware(tracer trace.Tracer, red *REDMetrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		started := time.Now()
		op := hr.Method + " " + hr.URL.Path

		ctx := otel.GetTextMapPropagator().Extract(hr.Context(), propagation.HeaderCarrier(hr.Header))
		ctx, span := tracer.Start(ctx, op,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(hr.Method),
				attribute.String(attrURLPath, hr.URL.Path),
			),
		)
		defer span.End()

		finish := red.TrackInflight(ctx, op)
		defer finish()

		rec := &spanRecorder{ResponseWriter: rw}
		next.ServeHTTP(rec, hr.WithContext(ctx))

		code := rec.statusCode()
		span.SetAttributes(
			semconv.HTTPResponseStatusCode(code),
			attribute.Int(attrResponseBodySize, rec.bytes),
		)

		status := StatusOK
		if code >= http.StatusInternalServerError {
			status = StatusError

			span.SetStatus(codes.Error, http.StatusText(code))
		}

		red.RecordRequest(ctx, op, status, time.Since(started))
	})
}
