package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/codescribe/pkg/analysis"
	"github.com/Sumatoshi-tech/codescribe/pkg/engine"
	"github.com/Sumatoshi-tech/codescribe/pkg/narrate"
)

// Error messages returned in the "error" field.
const (
	msgNoCode         = "No code provided for analysis"
	msgAnalysisFailed = "Failed to analyze code"
	msgInvalidRequest = "Invalid request body"
	msgBodyTooLarge   = "Request body too large"
	msgLineOutOfRange = "Line out of range"
	msgInternalError  = "Internal server error"
)

const (
	contentTypeJSON = "application/json"
	demoMessage     = "Hello from the codescribe server"
)

// PingResponse is the body of GET /api/ping and GET /api/demo.
type PingResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx API answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handlePing(rw http.ResponseWriter, hr *http.Request) {
	writeJSON(hr.Context(), rw, http.StatusOK, PingResponse{Message: s.cfg.PingMessage})
}

func (s *Server) handleDemo(rw http.ResponseWriter, hr *http.Request) {
	writeJSON(hr.Context(), rw, http.StatusOK, PingResponse{Message: demoMessage})
}

func (s *Server) handleAnalyze(rw http.ResponseWriter, hr *http.Request) {
	var req analysis.Request
	if !s.decode(rw, hr, s.schemas.analyze, &req) {
		return
	}

	res, err := s.engine.Submit(hr.Context(), req)
	if err != nil {
		s.writeEngineError(hr.Context(), rw, err)

		return
	}

	writeJSON(hr.Context(), rw, http.StatusOK, res)
}

func (s *Server) handleErrorCheck(rw http.ResponseWriter, hr *http.Request) {
	var req analysis.Request
	if !s.decode(rw, hr, s.schemas.analyze, &req) {
		return
	}

	res, err := s.engine.Check(hr.Context(), req)
	if err != nil {
		s.writeEngineError(hr.Context(), rw, err)

		return
	}

	writeJSON(hr.Context(), rw, http.StatusOK, res)
}

func (s *Server) handleNarrate(rw http.ResponseWriter, hr *http.Request) {
	var req engine.NarrateRequest
	if !s.decode(rw, hr, s.schemas.narrate, &req) {
		return
	}

	res, err := s.engine.Narrate(hr.Context(), req)
	if err != nil {
		s.writeEngineError(hr.Context(), rw, err)

		return
	}

	writeJSON(hr.Context(), rw, http.StatusOK, res)
}

// decode reads the body under the size ceiling, validates it against schema
// and unmarshals it into dst. On failure it writes the error response and
// returns false.
func (s *Server) decode(rw http.ResponseWriter, hr *http.Request, schema *gojsonschema.Schema, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(rw, hr.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(hr.Context(), rw, http.StatusRequestEntityTooLarge, msgBodyTooLarge, "")

			return false
		}

		writeError(hr.Context(), rw, http.StatusBadRequest, msgInvalidRequest, err.Error())

		return false
	}

	err = validate(schema, body)
	if err == nil {
		err = json.Unmarshal(body, dst)
	}

	if err != nil {
		s.logger.WarnContext(hr.Context(), "rejected request body", "path", hr.URL.Path, "error", err)
		writeError(hr.Context(), rw, http.StatusBadRequest, msgInvalidRequest, err.Error())

		return false
	}

	return true
}

// writeEngineError maps engine errors onto HTTP statuses.
func (s *Server) writeEngineError(ctx context.Context, rw http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysis.ErrEmptyInput):
		writeError(ctx, rw, http.StatusBadRequest, msgNoCode, "")
	case errors.Is(err, narrate.ErrLineOutOfRange):
		writeError(ctx, rw, http.StatusBadRequest, msgLineOutOfRange, err.Error())
	default:
		s.logger.ErrorContext(ctx, "analysis request failed", "error", err)
		writeError(ctx, rw, http.StatusInternalServerError, msgAnalysisFailed, err.Error())
	}
}

func writeError(ctx context.Context, rw http.ResponseWriter, status int, message, details string) {
	writeJSON(ctx, rw, status, ErrorResponse{Error: message, Details: details})
}

// writeJSON encodes value as the JSON response body with the given status.
func writeJSON(ctx context.Context, rw http.ResponseWriter, status int, value any) {
	rw.Header().Set("Content-Type", contentTypeJSON)
	rw.WriteHeader(status)

	encodeErr := json.NewEncoder(rw).Encode(value)
	if encodeErr != nil {
		slog.Default().ErrorContext(ctx, "failed to encode JSON response", "error", encodeErr)
	}
}
