package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codescribe/pkg/analysis"
	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(opts *GlobalOptions) *cobra.Command {
	var (
		language string
		out      outputFlags
	)

	cmd := &cobra.Command{
		Use:   "check [file|-]",
		Short: "Report likely mistakes in a source file",
		Long: `Report likely mistakes such as mismatched brackets, missing semicolons and
inconsistent indentation. Exits with status 1 when anything is found.`,
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

			res, err := rt.engine.Check(cmd.Context(), req)
			if err != nil {
				return err
			}

			err = writeOutput(out.output, quietWriter(opts, out.output, cmd.OutOrStdout()), func(w io.Writer) error {
				return rdr.Check(w, res)
			})
			if err != nil {
				return err
			}

			if res.HasErrors {
				return ErrFindings
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "language identifier (auto-detected from the file when omitted)")
	out.register(cmd, "text, json or yaml")

	return cmd
}
