package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/codescribe/pkg/analysis"
	"github.com/Sumatoshi-tech/codescribe/pkg/engine"
	"github.com/Sumatoshi-tech/codescribe/pkg/narrate"
	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
)

const (
	liveBufferSize = 4096
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingEvery  = (livePongWait * 9) / 10
	liveQueueSize  = 16
)

// Live message operations.
const (
	LiveOpAnalyze = "analyze"
	LiveOpCheck   = "check"
	LiveOpNarrate = "narrate"
	LiveOpError   = "error"
)

// LiveRequest is one client message on the live endpoint. Op defaults to
// analyze.
type LiveRequest struct {
	ID       string `json:"id,omitempty"`
	Op       string `json:"op,omitempty"`
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
	Previous string `json:"previous,omitempty"`
	Line     int    `json:"line,omitempty"`
}

// LiveResponse answers one LiveRequest. Exactly one of Analysis, Check,
// Narration and Error is set.
type LiveResponse struct {
	ID        string                `json:"id,omitempty"`
	Op        string                `json:"op"`
	Analysis  *analysis.Result      `json:"analysis,omitempty"`
	Check     *analysis.CheckResult `json:"check,omitempty"`
	Narration *engine.Narration     `json:"narration,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// handleLive upgrades to a websocket and answers each message in order.
func (s *Server) handleLive(rw http.ResponseWriter, hr *http.Request) {
	conn, err := s.upgrader.Upgrade(rw, hr, nil)
	if err != nil {
		s.logger.WarnContext(hr.Context(), "live upgrade failed", "error", err)

		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(hr.Context())
	defer cancel()

	conn.SetReadLimit(s.maxBody)

	if err := conn.SetReadDeadline(time.Now().Add(livePongWait)); err != nil {
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	out := make(chan LiveResponse, liveQueueSize)
	writerDone := make(chan struct{})

	go s.liveWriter(ctx, conn, out, writerDone)

	s.logger.InfoContext(ctx, "live session opened")

	for {
		var msg LiveRequest

		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.WarnContext(ctx, "live session read failed", "error", err)
			}

			break
		}

		select {
		case out <- s.answerLive(ctx, msg):
		case <-writerDone:
			cancel()

			return
		}
	}

	s.logger.InfoContext(ctx, "live session closed")
	cancel()
	<-writerDone
}

func (s *Server) liveWriter(ctx context.Context, conn *websocket.Conn, out <-chan LiveResponse, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(livePingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case resp := <-out:
			if err := conn.SetWriteDeadline(time.Now().Add(liveWriteWait)); err != nil {
				return
			}

			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(liveWriteWait)); err != nil {
				return
			}

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// answerLive runs one live request through the engine.
func (s *Server) answerLive(ctx context.Context, msg LiveRequest) LiveResponse {
	if msg.Op == "" {
		msg.Op = LiveOpAnalyze
	}

	ctx, span := s.tracer.Start(ctx, observability.SpanLiveMessage,
		trace.WithAttributes(attribute.String("live.op", msg.Op)),
	)
	defer span.End()

	resp := LiveResponse{ID: msg.ID, Op: msg.Op}
	req := analysis.Request{Code: msg.Code, Language: msg.Language}

	var err error

	switch msg.Op {
	case LiveOpAnalyze:
		resp.Analysis, err = s.engine.Submit(ctx, req)
	case LiveOpCheck:
		var res analysis.CheckResult

		res, err = s.engine.Check(ctx, req)
		if err == nil {
			resp.Check = &res
		}
	case LiveOpNarrate:
		var res engine.Narration

		res, err = s.engine.Narrate(ctx, engine.NarrateRequest{Code: msg.Code, Previous: msg.Previous, Line: msg.Line})
		if err == nil {
			resp.Narration = &res
		}
	default:
		return LiveResponse{ID: msg.ID, Op: LiveOpError, Error: "unknown op " + msg.Op}
	}

	if err != nil {
		resp.Op = LiveOpError
		resp.Error = liveErrorMessage(err)
	}

	return resp
}

func liveErrorMessage(err error) string {
	switch {
	case errors.Is(err, analysis.ErrEmptyInput):
		return msgNoCode
	case errors.Is(err, narrate.ErrLineOutOfRange):
		return msgLineOutOfRange
	default:
		return msgAnalysisFailed + ": " + err.Error()
	}
}
