// Package cli implements the gridwe command line interface.
package cli

import (
	"log/slog"
	"os"

	"github.com/me/gridwe/internal/config"
	"github.com/me/gridwe/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
)

// defaultDBPath returns the report database path, checking the
// GRIDWE_DB env var first.
func defaultDBPath() string {
	if p := os.Getenv("GRIDWE_DB"); p != "" {
		return p
	}
	return config.DefaultRunnerConfig().DBPath
}

// NewRootCmd creates the root cobra command for the gridwe CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gridwe",
		Short: "gridwe — grid workflow execution layer",
		Long:  "gridwe runs hint-annotated CWL workflows through pluggable execution hooks.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", logging.FormatText, "Log format (text, json)")

	root.AddCommand(
		newSubmitCmd(),
		newPluginsCmd(),
		newDescribeCmd(),
		newReportCmd(),
	)

	return root
}
