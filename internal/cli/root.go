// Package cli implements the depviz command-line interface.
//
// This package provides commands for rendering depdiscover scan documents as
// dependency graph images, summarizing their security findings, serving
// rendered artifacts over HTTP, and managing the render cache. The CLI is
// built with cobra and logs through the charmbracelet/log library.
//
// # Commands
//
//   - render: build the dependency graph and render it to an image
//   - report: summarize the security status of a scan document
//   - serve: serve rendered artifacts over HTTP
//   - cache: inspect or clear the render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/depdiscover/depviz/pkg/buildinfo"
)

// Execute runs the depviz CLI with the given context and returns an error
// if any command fails. Callers map the returned error to an exit code.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:   "depviz",
		Short: "depviz renders depdiscover scan documents as dependency graphs",
		Long: `depviz reads the JSON scan document produced by the depdiscover scanner and
renders a directed dependency graph image, coloring each dependency by its
security status: grey for unchecked, green for safe, yellow for check
errors, red for known vulnerabilities.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: depviz.toml in the working directory)")

	root.AddCommand(newRenderCmd(&configPath))
	root.AddCommand(newReportCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newCacheCmd())

	return root.ExecuteContext(ctx)
}
