package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codescribe/pkg/lsp"
	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
	"github.com/Sumatoshi-tech/codescribe/pkg/version"
)

// NewLSPCommand creates the language server command.
func NewLSPCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the language server (LSP) on stdio",
		Long: `Start a language server on stdio. Open documents get diagnostics on every
change (errors for syntax findings, warnings for style findings) and hovers
show the plain-language explanation.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			rt, err := bootstrap(opts, observability.ModeLSP)
			if err != nil {
				return err
			}
			defer rt.close()

			return lsp.NewServer(lsp.ServerDeps{
				Engine:  rt.engine,
				Logger:  rt.logger(),
				Tracer:  rt.providers.Tracer,
				Version: version.Version,
			}).Run()
		},
	}
}
