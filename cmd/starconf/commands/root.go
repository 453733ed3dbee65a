// Package commands defines the starconf command-line surface: a single
// root command taking the input and output directories as positional
// arguments.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starconf/starconf/pkg/builder"
	"github.com/starconf/starconf/pkg/telemetry"
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "starconf <input-dir> <output-dir>",
		Short: "Compile scripted configuration trees into YAML documents",
		Long: `starconf compiles a tree of Starlark configuration scripts into fully
resolved YAML documents, one per (application, environment) pair.

The input tree looks like:

  <input>/environments/<env>.conf   environment definitions
  <input>/apps/<app>/<env>.conf     per-application overlays (optional)
  <input>/vars/<name>.conf          shared fragments, imported via vars()

Each overlay runs with the composed environment bound as 'env'. Upper-case
top-level bindings become the document; everything else is script-local.
The first error anywhere aborts the whole run.`,
		Example: `  # Compile ./config into ./out
  starconf ./config ./out

  # Verbose run
  LOG_LEVEL=debug starconf ./config ./out`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := telemetry.NewLogger(telemetry.DefaultLoggingConfig())

			b, err := builder.New(builder.Options{
				InputDir:  args[0],
				OutputDir: args[1],
			}, logger)
			if err != nil {
				return err
			}

			result, err := b.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d document(s) to %s\n", result.Documents, args[1])
			return nil
		},
	}
}
