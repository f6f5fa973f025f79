package commands

import (
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codescribe/pkg/plot"
	"github.com/Sumatoshi-tech/codescribe/pkg/renderer"
)

// outputFlags are the rendering flags shared by analyze, check and narrate.
type outputFlags struct {
	format  string
	output  string
	theme   string
	noColor bool
}

func (f *outputFlags) register(cmd *cobra.Command, formats string) {
	cmd.Flags().StringVarP(&f.format, "format", "f", string(renderer.FormatText), "output format: "+formats)
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write output to a file instead of stdout")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "disable colored output")
}

// renderer builds the renderer for the flags. Color is off when writing to
// a file, when stdout is not a terminal, or when NO_COLOR is set.
func (f *outputFlags) renderer(opts *GlobalOptions, src source) (*renderer.Renderer, error) {
	format, err := renderer.ParseFormat(f.format)
	if err != nil {
		return nil, err
	}

	cfg := renderer.NewConfig(f.noColor || color.NoColor || f.output != "")

	title := ""
	if src.Name != "" {
		title = filepath.Base(src.Name)
	}

	return renderer.New(format,
		renderer.WithConfig(cfg),
		renderer.WithVerbose(opts.Verbose),
		renderer.WithTitle(title),
		renderer.WithTheme(plot.ParseTheme(f.theme)),
	), nil
}
