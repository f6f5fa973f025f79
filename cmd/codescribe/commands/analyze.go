package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codescribe/pkg/analysis"
	"github.com/Sumatoshi-tech/codescribe/pkg/langdetect"
	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(opts *GlobalOptions) *cobra.Command {
	var (
		language string
		out      outputFlags
	)

	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Analyze a source file",
		Long: `Analyze a source file, or stdin when the file is omitted or "-".

The language is detected from the file name and contents unless --language
is given; stdin input without --language uses the configured default.`,
		Example: `  codescribe analyze app.js
  cat main.py | codescribe analyze --language python --format json
  codescribe analyze app.ts --format html --output report.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			rdr, err := out.renderer(opts, src)
			if err != nil {
				return err
			}

			rt, err := bootstrap(opts, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer rt.close()

			req := analysis.Request{Code: src.Code, Language: resolveLanguage(rt, language, src)}

			res, err := rt.engine.Submit(cmd.Context(), req)
			if err != nil {
				return err
			}

			return writeOutput(out.output, quietWriter(opts, out.output, cmd.OutOrStdout()), func(w io.Writer) error {
				return rdr.Analysis(w, res)
			})
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "language identifier (auto-detected from the file when omitted)")
	cmd.Flags().StringVar(&out.theme, "theme", "light", "HTML report theme: light or dark")
	out.register(cmd, "text, json, yaml or html")

	return cmd
}

// resolveLanguage picks the explicit language, else the detected one, else
// leaves it empty for the engine default.
func resolveLanguage(rt *runtime, explicit string, src source) string {
	if explicit != "" || src.Name == "" {
		return explicit
	}

	detected, err := langdetect.Detect(src.Name, []byte(src.Code))
	if err != nil {
		rt.logger().Debug("language detection failed", "file", src.Name, "error", err)

		return ""
	}

	rt.logger().Debug("language detected", "file", src.Name, "language", detected)

	return detected
}

// quietWriter discards stdout output under --quiet. Files named by
// --output are still written.
func quietWriter(opts *GlobalOptions, output string, stdout io.Writer) io.Writer {
	if opts.Quiet && output == "" {
		return io.Discard
	}

	return stdout
}

// writeOutput runs render against --output or stdout and closes the file.
func writeOutput(output string, stdout io.Writer, render func(io.Writer) error) error {
	w, closeOutput, err := openOutput(output, stdout)
	if err != nil {
		return err
	}

	renderErr := render(w)
	closeErr := closeOutput()

	if renderErr != nil {
		return renderErr
	}

	if closeErr != nil {
		return fmt.Errorf("close output: %w", closeErr)
	}

	return nil
}
