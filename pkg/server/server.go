// Package server implements the codescribe HTTP API: analysis, error check
// and narration endpoints, a websocket endpoint for live analysis while
// typing, and the health and metrics endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/codescribe/pkg/config"
	"github.com/Sumatoshi-tech/codescribe/pkg/engine"
	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
)

// Route paths.
const (
	PathPing       = "/api/ping"
	PathDemo       = "/api/demo"
	PathAnalyze    = "/api/code-analysis"
	PathErrorCheck = "/api/error-check"
	PathNarrate    = "/api/narrate"
	PathLive       = "/api/live"
	PathHealth     = "/healthz"
	PathReady      = "/readyz"
	PathMetrics    = "/metrics"
)

// shutdownTimeout bounds graceful shutdown once the run context ends.
const shutdownTimeout = 10 * time.Second

// Deps holds injectable dependencies for the server.
// Zero-value fields use production defaults.
type Deps struct {
	// Engine runs analyses. Nil uses an uncached engine.
	Engine *engine.Engine

	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Tracer creates request spans. Nil disables tracing.
	Tracer trace.Tracer

	// RED records per-route RED metrics. Nil disables them.
	RED *observability.REDMetrics

	// MetricsHandler serves /metrics. Nil leaves the route unregistered.
	MetricsHandler http.Handler

	// ReadyChecks gate /readyz.
	ReadyChecks []observability.ReadyCheck
}

// Server is the codescribe HTTP API.
type Server struct {
	cfg      config.ServerConfig
	engine   *engine.Engine
	logger   *slog.Logger
	tracer   trace.Tracer
	red      *observability.REDMetrics
	metrics  http.Handler
	ready    []observability.ReadyCheck
	schemas  *requestSchemas
	upgrader websocket.Upgrader
	maxBody  int64
}

// New creates a Server from the server configuration section.
func New(cfg config.ServerConfig, deps Deps) (*Server, error) {
	maxBody, err := cfg.MaxBodyBytes()
	if err != nil {
		return nil, err
	}

	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}

	srv := &Server{
		cfg:     cfg,
		engine:  deps.Engine,
		logger:  deps.Logger,
		tracer:  deps.Tracer,
		red:     deps.RED,
		metrics: deps.MetricsHandler,
		ready:   deps.ReadyChecks,
		schemas: schemas,
		maxBody: maxBody,
	}

	if srv.engine == nil {
		srv.engine = engine.New(engine.Deps{Logger: deps.Logger, Tracer: deps.Tracer})
	}

	if srv.logger == nil {
		srv.logger = slog.Default()
	}

	if srv.tracer == nil {
		srv.tracer = nooptrace.NewTracerProvider().Tracer("codescribe")
	}

	srv.upgrader = websocket.Upgrader{
		ReadBufferSize:  liveBufferSize,
		WriteBufferSize: liveBufferSize,
		CheckOrigin:     srv.checkOrigin,
	}

	return srv, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET "+PathPing, s.handlePing)
	api.HandleFunc("GET "+PathDemo, s.handleDemo)
	api.HandleFunc("POST "+PathAnalyze, s.handleAnalyze)
	api.HandleFunc("POST "+PathErrorCheck, s.handleErrorCheck)
	api.HandleFunc("POST "+PathNarrate, s.handleNarrate)
	api.Handle("GET "+PathHealth, observability.HealthHandler())
	api.Handle("GET "+PathReady, observability.ReadyHandler(s.ready...))

	if s.metrics != nil {
		api.Handle("GET "+PathMetrics, s.metrics)
	}

	var compressed http.Handler = api
	if s.cfg.Gzip {
		compressed = gzhttp.GzipHandler(api)
	}

	// The live route hijacks the connection and bypasses compression.
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+PathLive, s.handleLive)
	mux.Handle("/", compressed)

	var handler http.Handler = mux
	handler = observability.HTTPMiddleware(s.tracer, s.red, handler)
	handler = recoveryMiddleware(s.logger, handler)
	handler = corsMiddleware(s.cfg.CORSOrigin, handler)
	handler = accessLogMiddleware(s.logger, handler)
	handler = requestIDMiddleware(handler)

	return handler
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr(), err)
	}

	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	s.logger.InfoContext(ctx, "codescribe server listening", "addr", listener.Addr().String())

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	s.logger.InfoContext(ctx, "codescribe server shutting down")

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func (s *Server) checkOrigin(hr *http.Request) bool {
	origin := hr.Header.Get("Origin")
	if origin == "" || s.cfg.CORSOrigin == "*" {
		return true
	}

	return origin == s.cfg.CORSOrigin
}
