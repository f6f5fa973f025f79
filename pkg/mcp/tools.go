package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/codescribe/pkg/analysis"
	"github.com/Sumatoshi-tech/codescribe/pkg/engine"
)

// Tool name constants.
const (
	ToolNameAnalyze = "codescribe_analyze"
	ToolNameCheck   = "codescribe_check"
	ToolNameNarrate = "codescribe_narrate"
)

// Input size limits.
const (
	// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MB).
	MaxCodeInputBytes = 1 << 20
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyCode indicates the code parameter is empty.
	ErrEmptyCode = errors.New("code parameter is required and must not be empty")
	// ErrCodeTooLarge indicates the code input exceeds the size limit.
	ErrCodeTooLarge = errors.New("code input exceeds maximum size")
	// ErrNegativeLine indicates a line number below zero.
	ErrNegativeLine = errors.New("line must not be negative")
)

// Input types (auto-generate JSON schemas via struct tags).

// CodeInput is the input schema for the codescribe_analyze and
// codescribe_check tools.
type CodeInput struct {
	Code     string `json:"code"               jsonschema:"source code to analyze"`
	Language string `json:"language,omitempty" jsonschema:"language identifier (javascript ts python ...); defaults to javascript"`
}

// NarrateInput is the input schema for the codescribe_narrate tool.
type NarrateInput struct {
	Code     string `json:"code"               jsonschema:"source code to read aloud"`
	Previous string `json:"previous,omitempty" jsonschema:"earlier version of the code; when set the changes are narrated"`
	Line     int    `json:"line,omitempty"     jsonschema:"1-based line to read; 0 reads the whole code"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input CodeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateCodeInput(input.Code)
	if err != nil {
		return errorResult(err)
	}

	res, err := s.engine.Submit(ctx, analysis.Request{Code: input.Code, Language: input.Language})
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(res)
}

func (s *Server) handleCheck(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input CodeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateCodeInput(input.Code)
	if err != nil {
		return errorResult(err)
	}

	res, err := s.engine.Check(ctx, analysis.Request{Code: input.Code, Language: input.Language})
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(res)
}

func (s *Server) handleNarrate(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input NarrateInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Previous == "" {
		err := validateCodeInput(input.Code)
		if err != nil {
			return errorResult(err)
		}
	}

	if len(input.Code) > MaxCodeInputBytes || len(input.Previous) > MaxCodeInputBytes {
		return errorResult(fmt.Errorf("%w: max %d bytes", ErrCodeTooLarge, MaxCodeInputBytes))
	}

	if input.Line < 0 {
		return errorResult(fmt.Errorf("%w: %d", ErrNegativeLine, input.Line))
	}

	res, err := s.engine.Narrate(ctx, engine.NarrateRequest{
		Code:     input.Code,
		Previous: input.Previous,
		Line:     input.Line,
	})
	if err != nil {
		return errorResult(err)
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: res.Text},
		},
	}, ToolOutput{Data: res}, nil
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validateCodeInput checks common code input constraints.
func validateCodeInput(code string) error {
	if code == "" {
		return ErrEmptyCode
	}

	if len(code) > MaxCodeInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(code), MaxCodeInputBytes)
	}

	return nil
}
