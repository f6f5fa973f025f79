package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codescribe/pkg/analysis"
	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
	"github.com/Sumatoshi-tech/codescribe/pkg/server"
)

// readyProbe is analyzed by the /readyz check.
const readyProbe = "let ready = true;"

// NewServeCommand creates the HTTP server command.
func NewServeCommand(opts *GlobalOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API:

  GET  /api/ping            liveness message
  GET  /api/demo            greeting
  POST /api/code-analysis   analyze {code, language}
  POST /api/error-check     report likely mistakes
  POST /api/narrate         read code aloud
  GET  /api/live            WebSocket session for editors
  GET  /healthz, /readyz, /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(opts, observability.ModeServe)
			if err != nil {
				return err
			}
			defer rt.close()

			cfg := rt.cfg.Server

			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}

			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			srv, err := server.New(cfg, server.Deps{
				Engine:         rt.engine,
				Logger:         rt.logger(),
				Tracer:         rt.providers.Tracer,
				RED:            rt.red,
				MetricsHandler: rt.providers.MetricsHandler,
				ReadyChecks:    []observability.ReadyCheck{engineReady(rt)},
			})
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")

	return cmd
}

// engineReady reports ready once the engine analyzes a probe snippet.
func engineReady(rt *runtime) observability.ReadyCheck {
	return func(ctx context.Context) error {
		_, err := rt.engine.Submit(ctx, analysis.Request{Code: readyProbe})

		return err
	}
}
