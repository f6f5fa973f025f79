package renderer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/codescribe/pkg/analysis"
	"github.com/Sumatoshi-tech/codescribe/pkg/engine"
	"github.com/Sumatoshi-tech/codescribe/pkg/plot"
)

// Format is an output format.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
)

// Sentinel errors.
var (
	// ErrUnknownFormat is returned for a format name outside the supported set.
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrUnsupportedFormat is returned when a format cannot render a value.
	ErrUnsupportedFormat = errors.New("format not supported for this output")
	// ErrNilResult is returned when nil is passed to a render method.
	ErrNilResult = errors.New("result is nil")
)

// ParseFormat maps a format name onto a Format. Empty selects text.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (want text, json, yaml or html)", ErrUnknownFormat, name)
	}
}

// Renderer writes results in one output format.
type Renderer struct {
	format  Format
	config  Config
	verbose bool
	title   string
	theme   plot.Theme
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithConfig sets the terminal configuration used by the text format.
func WithConfig(cfg Config) Option {
	return func(r *Renderer) { r.config = cfg }
}

// WithVerbose includes the long-form explanation and comments in text output.
func WithVerbose(verbose bool) Option {
	return func(r *Renderer) { r.verbose = verbose }
}

// WithTitle sets the header title, usually the input file name.
func WithTitle(title string) Option {
	return func(r *Renderer) { r.title = title }
}

// WithTheme sets the HTML report theme.
func WithTheme(theme plot.Theme) Option {
	return func(r *Renderer) { r.theme = theme }
}

// New creates a Renderer for format.
func New(format Format, options ...Option) *Renderer {
	r := &Renderer{
		format: format,
		config: Config{Width: DefaultWidth},
		theme:  plot.ThemeLight,
	}

	for _, opt := range options {
		opt(r)
	}

	return r
}

// Analysis writes an analysis result.
func (r *Renderer) Analysis(w io.Writer, res *analysis.Result) error {
	if res == nil {
		return ErrNilResult
	}

	switch r.format {
	case FormatText:
		return writeString(w, r.analysisText(res))
	case FormatHTML:
		return plot.Render(w, res, plot.Options{Title: r.title, Theme: r.theme})
	default:
		return r.encode(w, res)
	}
}

// Check writes an error check result.
func (r *Renderer) Check(w io.Writer, res analysis.CheckResult) error {
	switch r.format {
	case FormatText:
		return writeString(w, r.checkText(res))
	case FormatHTML:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, r.format)
	default:
		return r.encode(w, res)
	}
}

// Narration writes a narration.
func (r *Renderer) Narration(w io.Writer, n engine.Narration) error {
	switch r.format {
	case FormatText:
		return writeString(w, r.narrationText(n))
	case FormatHTML:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, r.format)
	default:
		return r.encode(w, n)
	}
}

func (r *Renderer) encode(w io.Writer, v any) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("marshal to JSON: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("marshal to YAML: %w", err)
		}

		err = enc.Close()
		if err != nil {
			return fmt.Errorf("flush YAML: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, r.format)
	}
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
