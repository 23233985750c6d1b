// BoxPlanner: self-storage hall configurator.
//
// Lays out storage boxes in a hall, prices the build and simulates the
// rental cash flow. Runs once from the command line or serves a JSON API.
//
// Build:
//   go build -o boxplanner ./cmd/boxplanner
//
// Usage:
//   boxplanner plan --preset rect-600 --cashflow --pdf report.pdf
//   boxplanner serve
//   boxplanner presets
//   boxplanner backup --export backup.json

package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/boxplanner/internal/config"
	"github.com/piwi3910/boxplanner/internal/logging"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogPretty)

	if err := rootCmd(cfg).Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func rootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "boxplanner",
		Short:         "Self-storage hall configurator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(planCmd(cfg))
	root.AddCommand(serveCmd(cfg))
	root.AddCommand(presetsCmd(cfg))
	root.AddCommand(backupCmd(cfg))
	return root
}
