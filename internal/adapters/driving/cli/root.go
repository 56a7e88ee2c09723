// Package cli provides the semgate command-line interface.
package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/semgate/internal/core/ports/driving"
	"github.com/custodia-labs/semgate/internal/core/services"
	"github.com/custodia-labs/semgate/internal/logger"
)

// version is set by Execute from the build.
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	configDir string
)

// Services wired by ensureServices. Tests swap these for mocks.
var (
	chatService   driving.ChatService
	ingestService driving.IngestService
	queryRouter   *services.QueryRouter
)

var rootCmd = &cobra.Command{
	Use:   "semgate",
	Short: "Semantic-cache chat gateway",
	Long: `Semgate answers questions through a cache-aside gateway: semantically
similar prompts are served from a cache instead of spending generation
tokens, and answers can be grounded in your own ingested documents.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (default ~/.semgate)")
}

// Execute runs the CLI with the given build version.
func Execute(v string) error {
	version = v
	defer closeServices()
	return rootCmd.Execute()
}

// closers collects resources to release on exit.
var closers []io.Closer

// closeServices releases wired resources and waits for pending cache
// writes.
func closeServices() {
	if queryRouter != nil {
		queryRouter.Drain()
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Warn("close: %v", err)
		}
	}
	closers = nil
}
