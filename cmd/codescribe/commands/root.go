// Package commands implements the codescribe CLI subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codescribe/pkg/cache"
	"github.com/Sumatoshi-tech/codescribe/pkg/config"
	"github.com/Sumatoshi-tech/codescribe/pkg/engine"
	"github.com/Sumatoshi-tech/codescribe/pkg/observability"
	"github.com/Sumatoshi-tech/codescribe/pkg/version"
)

// ErrFindings is returned by check when the code has findings. The process
// exits with status 1 without printing it.
var ErrFindings = errors.New("findings reported")

// GlobalOptions holds the persistent flags shared by every subcommand.
type GlobalOptions struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

// NewRootCommand builds the codescribe command tree.
func NewRootCommand() *cobra.Command {
	opts := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "codescribe",
		Short: "codescribe - explain source code in plain language",
		Long: `codescribe extracts the structure of a source file (functions, variables,
loops, conditionals, comments, imports), counts its lines, rates its
complexity, flags likely mistakes and explains it in plain language.

Commands:
  analyze   Analyze a file or stdin
  check     Report likely mistakes; exits 1 when any are found
  narrate   Read code aloud, one line or the changes between two versions
  serve     Start the HTTP API
  mcp       Start the MCP server on stdio
  lsp       Start the language server on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(
		NewAnalyzeCommand(opts),
		NewCheckCommand(opts),
		NewNarrateCommand(opts),
		NewServeCommand(opts),
		NewMCPCommand(opts),
		NewLSPCommand(opts),
		NewVersionCommand(),
	)

	return rootCmd
}

// NewVersionCommand prints build metadata.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// runtime is the wired set of services a subcommand runs on.
type runtime struct {
	cfg       *config.Config
	providers observability.Providers
	engine    *engine.Engine
	red       *observability.REDMetrics
}

func (rt *runtime) logger() *slog.Logger {
	return rt.providers.Logger
}

// close flushes telemetry.
func (rt *runtime) close() {
	err := rt.providers.Shutdown(context.Background())
	if err != nil {
		rt.logger().Warn("observability shutdown failed", "error", err)
	}
}

// bootstrap loads configuration and wires observability, the result cache
// and the engine for the given mode.
func bootstrap(opts *GlobalOptions, mode observability.AppMode) (*runtime, error) {
	cfg, err := config.LoadConfig(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	obsCfg, err := cfg.Observability(mode, version.Version)
	if err != nil {
		return nil, err
	}

	switch {
	case opts.Verbose:
		obsCfg.LogLevel = slog.LevelDebug
	case opts.Quiet:
		obsCfg.LogLevel = slog.LevelError
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	rt := &runtime{cfg: cfg, providers: providers}

	results, err := cache.New(cfg.Analysis.CacheEntries)
	if err != nil {
		rt.close()

		return nil, fmt.Errorf("create result cache: %w", err)
	}

	analysisMetrics, err := observability.NewAnalysisMetrics(providers.Meter)
	if err != nil {
		rt.close()

		return nil, err
	}

	rt.red, err = observability.NewREDMetrics(providers.Meter)
	if err != nil {
		rt.close()

		return nil, err
	}

	rt.engine = engine.New(engine.Deps{
		Cache:           results,
		Metrics:         analysisMetrics,
		Tracer:          providers.Tracer,
		Logger:          providers.Logger,
		DefaultLanguage: cfg.Analysis.DefaultLanguage,
	})

	return rt, nil
}
