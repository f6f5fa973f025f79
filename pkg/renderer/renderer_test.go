package renderer_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/codescribe/pkg/analysis"
	"github.com/Sumatoshi-tech/codescribe/pkg/engine"
	"github.com/Sumatoshi-tech/codescribe/pkg/narrate"
	"github.com/Sumatoshi-tech/codescribe/pkg/renderer"
)

const sample = "// add two numbers\nfunction add(a, b) {\n  return a + b\n}\n"

func analyzed(t *testing.T, code string) *analysis.Result {
	t.Helper()

	res, err := analysis.Submit(analysis.Request{Code: code})
	require.NoError(t, err)

	return res
}

func plain(options ...renderer.Option) []renderer.Option {
	return append([]renderer.Option{renderer.WithConfig(renderer.Config{Width: 60, NoColor: true})}, options...)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want renderer.Format
	}{
		{name: "", want: renderer.FormatText},
		{name: "text", want: renderer.FormatText},
		{name: "JSON", want: renderer.FormatJSON},
		{name: " yaml ", want: renderer.FormatYAML},
		{name: "html", want: renderer.FormatHTML},
	}

	for _, tc := range tests {
		got, err := renderer.ParseFormat(tc.name)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}

	_, err := renderer.ParseFormat("xml")
	require.ErrorIs(t, err, renderer.ErrUnknownFormat)
}

func TestAnalysis_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r := renderer.New(renderer.FormatText, plain(renderer.WithTitle("add.js"))...)
	require.NoError(t, r.Analysis(&buf, analyzed(t, sample)))

	out := buf.String()
	assert.Contains(t, out, "add.js")
	assert.Contains(t, out, "complexity: low")
	assert.Contains(t, out, "add")
	assert.Contains(t, out, "regular")
	assert.Contains(t, out, "Missing semicolon")
	assert.NotContains(t, out, "\x1b[")
	assert.NotContains(t, out, "add two numbers", "comments are verbose-only")
}

func TestAnalysis_TextVerbose(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	res := analyzed(t, sample)

	r := renderer.New(renderer.FormatText, plain(renderer.WithVerbose(true))...)
	require.NoError(t, r.Analysis(&buf, res))

	out := buf.String()
	assert.Contains(t, out, "add two numbers")
	assert.Contains(t, out, res.ReadableExplanation)
}

func TestAnalysis_TextColor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r := renderer.New(renderer.FormatText, renderer.WithConfig(renderer.Config{Width: 60}))
	require.NoError(t, r.Analysis(&buf, analyzed(t, "const x = 1")))

	assert.Contains(t, buf.String(), "\x1b[")
}

func TestAnalysis_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, renderer.New(renderer.FormatJSON).Analysis(&buf, analyzed(t, sample)))

	var decoded analysis.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 5, decoded.Summary.TotalLines)
	require.Len(t, decoded.Structure.Functions, 1)
	assert.Contains(t, buf.String(), `"imports": []`)
}

func TestAnalysis_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, renderer.New(renderer.FormatYAML).Analysis(&buf, analyzed(t, sample)))
	assert.Contains(t, buf.String(), "totalLines: 5")

	var decoded analysis.Result
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, analysis.ComplexityLow, decoded.Summary.Complexity)
}

func TestAnalysis_HTML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r := renderer.New(renderer.FormatHTML, renderer.WithTitle("add.js"))
	require.NoError(t, r.Analysis(&buf, analyzed(t, sample)))
	assert.Contains(t, buf.String(), "add.js")
}

func TestAnalysis_NilResult(t *testing.T) {
	t.Parallel()

	err := renderer.New(renderer.FormatJSON).Analysis(&bytes.Buffer{}, nil)
	require.ErrorIs(t, err, renderer.ErrNilResult)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	res := analysis.Check(analyzed(t, "let x = [1, 2"))

	var buf bytes.Buffer

	require.NoError(t, renderer.New(renderer.FormatText, plain()...).Check(&buf, res))
	assert.Contains(t, buf.String(), "ERROR CHECK")
	assert.Contains(t, buf.String(), res.Summary)

	buf.Reset()
	require.NoError(t, renderer.New(renderer.FormatText, plain()...).Check(&buf, analysis.Check(analyzed(t, "x;"))))
	assert.Contains(t, buf.String(), "clean")
	assert.Contains(t, buf.String(), "No obvious syntax errors detected in the code.")

	err := renderer.New(renderer.FormatHTML).Check(&bytes.Buffer{}, res)
	require.ErrorIs(t, err, renderer.ErrUnsupportedFormat)
}

func TestNarration(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, renderer.New(renderer.FormatText, plain()...).Narration(&buf, engine.Narration{Text: "Line 1: x", Lines: 1}))
	assert.Equal(t, "Line 1: x\n", buf.String())

	buf.Reset()

	diff := engine.Narration{
		Text:    "1 line added and 0 lines removed. Line 2 added: b.",
		Changes: []narrate.Change{{Kind: narrate.ChangeAdded, Line: 2, Text: "b"}},
		Lines:   2,
	}
	require.NoError(t, renderer.New(renderer.FormatText, plain()...).Narration(&buf, diff))
	assert.Contains(t, buf.String(), "+    2  b")
	assert.True(t, strings.HasSuffix(buf.String(), diff.Text+"\n"))

	buf.Reset()
	require.NoError(t, renderer.New(renderer.FormatJSON).Narration(&buf, diff))
	assert.Contains(t, buf.String(), `"kind": "added"`)
}

func TestDrawHeader(t *testing.T) {
	t.Parallel()

	header := renderer.DrawHeader("TITLE", "right", 30)
	lines := strings.Split(header, "\n")
	require.Len(t, lines, 3)

	for _, line := range lines {
		assert.Equal(t, 30, len([]rune(line)))
	}

	assert.Contains(t, lines[1], "TITLE")
	assert.True(t, strings.HasSuffix(lines[1], "right ┃"))

	cfg := renderer.Config{}
	colored := renderer.DrawHeader(cfg.Colorize("TITLE", 34), "", 20)
	assert.Equal(t, 20, len([]rune(strings.Split(colored, "\n")[0])))
}

func TestDrawSeparator(t *testing.T) {
	t.Parallel()

	assert.Empty(t, renderer.DrawSeparator(0))
	assert.Equal(t, "───", renderer.DrawSeparator(3))
}

func TestDetectWidth(t *testing.T) {
	tests := []struct {
		columns string
		want    int
	}{
		{columns: "", want: renderer.DefaultWidth},
		{columns: "wide", want: renderer.DefaultWidth},
		{columns: "100", want: 100},
		{columns: "10", want: renderer.MinWidth},
		{columns: "500", want: renderer.MaxWidth},
	}

	for _, tc := range tests {
		t.Setenv("COLUMNS", tc.columns)
		assert.Equal(t, tc.want, renderer.DetectWidth(), tc.columns)
	}
}

func TestNewConfig_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	cfg := renderer.NewConfig(false)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "x", cfg.Colorize("x", 31))
}
