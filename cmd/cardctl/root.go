package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/buildcard/pkg/logger"
)

var (
	logLevel  string
	logFormat string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cardctl",
		Short: "Score character builds and exercise the build card service",
		Long: `cardctl works with the same weighting profiles and roll tables as the
build card service.

It can reconstruct upgrade rolls, classify scores into tiers, score a build
file offline and drive a concurrent load test against a running service.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithFormat(logFormat)); err != nil {
				return err
			}
			return logger.SetLevelString(logLevel)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", logger.FormatText, "log format (text, json)")

	root.AddCommand(newRollCmd(), newTierCmd(), newScoreCmd(), newLoadCmd())
	return root
}
