package server

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, X-Request-ID, traceparent, tracestate"
	corsMaxAge       = "86400"
)

// requestIDMiddleware reuses the caller's X-Request-ID or assigns a new UUID,
// echoes it and stores it in the request context for logging.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		reqID := hr.Header.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		rw.Header().Set(HeaderRequestID, reqID)

		ctx := observability.ContextWithRequestID(hr.Context(), reqID)
		next.ServeHTTP(rw, hr.WithContext(ctx))
	})
}

// accessLogMiddleware logs one line per request after it completes.
func accessLogMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		start := time.Now()
		sw := &statusRecorder{ResponseWriter: rw, status: http.StatusOK}

		next.ServeHTTP(sw, hr)

		logger.InfoContext(hr.Context(), "http request",
			"method", hr.Method,
			"path", hr.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", hr.RemoteAddr,
		)
	})
}

// recoveryMiddleware turns a handler panic into a 500 response.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			if recovered == http.ErrAbortHandler {
				panic(recovered)
			}

			logger.ErrorContext(hr.Context(), "panic recovered",
				"error", fmt.Sprint(recovered),
				"stack", string(debug.Stack()),
			)

			writeError(hr.Context(), rw, http.StatusInternalServerError, msgInternalError, fmt.Sprint(recovered))
		}()

		next.ServeHTTP(rw, hr)
	})
}

// corsMiddleware adds CORS headers and answers preflight requests.
func corsMiddleware(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		header := rw.Header()
		header.Set("Access-Control-Allow-Origin", origin)
		header.Set("Access-Control-Allow-Methods", corsAllowMethods)
		header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		header.Set("Access-Control-Expose-Headers", HeaderRequestID)
		header.Set("Access-Control-Max-Age", corsMaxAge)

		if origin != "*" {
			header.Add("Vary", "Origin")
		}

		if hr.Method == http.MethodOptions {
			rw.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(rw, hr)
	})
}

var errHijackUnsupported = errors.New("response writer does not support hijacking")

// statusRecorder captures the response status for the access log.
type statusRecorder struct {
	http.ResponseWriter

	status  int
	written bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.status = code
		sr.written = true
	}

	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(buf []byte) (int, error) {
	sr.written = true

	return sr.ResponseWriter.Write(buf)
}

// Hijack hands the connection to the websocket upgrader.
func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := sr.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errHijackUnsupported
	}

	sr.status = http.StatusSwitchingProtocols
	sr.written = true

	return hj.Hijack()
}

// Unwrap lets http.ResponseController reach Hijack and Flush.
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}
