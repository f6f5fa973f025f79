package commands

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codescribe/pkg/engine"
	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
)

// ErrDiffArgs is returned when --diff is not given exactly two inputs.
var ErrDiffArgs = errors.New("--diff needs the previous and the current file")

// NewNarrateCommand creates the narrate command.
func NewNarrateCommand(opts *GlobalOptions) *cobra.Command {
	var (
		line int
		diff bool
		out  outputFlags
	)

	cmd := &cobra.Command{
		Use:   "narrate [file|-] | narrate --diff <previous> <current>",
		Short: "Read code aloud",
		Long: `Read code as spoken text, with symbols spelled out as words.

--line reads a single 1-based line verbatim. --diff reads the lines added
and removed between two versions of a file.`,
		Example: `  codescribe narrate app.js
  codescribe narrate app.js --line 12
  codescribe narrate --diff app.old.js app.js`,
		Args: cobra.MaximumNArgs(2), //nolint:mnd // previous and current file.
		RunE: func(cmd *cobra.Command, args []string) error {
			req, src, err := narrateRequest(cmd, args, diff, line)
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

			res, err := rt.engine.Narrate(cmd.Context(), req)
			if err != nil {
				return err
			}

			return writeOutput(out.output, quietWriter(opts, out.output, cmd.OutOrStdout()), func(w io.Writer) error {
				return rdr.Narration(w, res)
			})
		},
	}

	cmd.Flags().IntVar(&line, "line", 0, "read only this 1-based line")
	cmd.Flags().BoolVar(&diff, "diff", false, "narrate the changes between two files")
	cmd.MarkFlagsMutuallyExclusive("line", "diff")
	out.register(cmd, "text, json or yaml")

	return cmd
}

func narrateRequest(cmd *cobra.Command, args []string, diff bool, line int) (engine.NarrateRequest, source, error) {
	if !diff {
		if len(args) > 1 {
			return engine.NarrateRequest{}, source{}, ErrDiffArgs
		}

		src, err := readSource(args, cmd.InOrStdin())
		if err != nil {
			return engine.NarrateRequest{}, source{}, err
		}

		return engine.NarrateRequest{Code: src.Code, Line: line}, src, nil
	}

	if len(args) != 2 { //nolint:mnd // previous and current file.
		return engine.NarrateRequest{}, source{}, ErrDiffArgs
	}

	previous, err := readSource(args[:1], cmd.InOrStdin())
	if err != nil {
		return engine.NarrateRequest{}, source{}, err
	}

	current, err := readSource(args[1:], cmd.InOrStdin())
	if err != nil {
		return engine.NarrateRequest{}, source{}, err
	}

	return engine.NarrateRequest{Code: current.Code, Previous: previous.Code}, current, nil
}
