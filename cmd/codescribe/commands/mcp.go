package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codescribe/pkg/mcp"
	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
	"github.com/Sumatoshi-tech/codescribe/pkg/version"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes codescribe as tools that AI agents can discover and
invoke:
  - codescribe_analyze: structure, line counts, complexity and explanation
  - codescribe_check: likely mistakes with a one-sentence summary
  - codescribe_narrate: code read aloud, or the changes between two versions`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(opts, observability.ModeMCP)
			if err != nil {
				return err
			}
			defer rt.close()

			srv := mcp.NewServer(mcp.ServerDeps{
				Engine:  rt.engine,
				Version: version.Version,
				Logger:  rt.logger(),
				Metrics: rt.red,
				Tracer:  rt.providers.Tracer,
			})

			return srv.Run(cmd.Context())
		},
	}
}
