package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/buildcard/internal/loadtest"
	"github.com/okian/buildcard/pkg/logger"
)

func newLoadCmd() *cobra.Command {
	cfg := loadtest.Config{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Submit generated builds concurrently and verify the stored bests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.Logger = logger.Named("loadtest")
			stats, err := loadtest.Run(cmd.Context(), cfg)
			if stats != nil {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, headerStyle.Render("run "+stats.RunID))
				fmt.Fprintf(out, "%s%d\n", labelStyle.Render("submitted"), stats.Submitted)
				fmt.Fprintf(out, "%s%d\n", labelStyle.Render("successful"), stats.Successful)
				fmt.Fprintf(out, "%s%d\n", labelStyle.Render("failed"), stats.Failed)
				fmt.Fprintf(out, "%s%d\n", labelStyle.Render("unstored"), stats.Unstored)
				fmt.Fprintf(out, "%s%d\n", labelStyle.Render("verified"), stats.Verified)
				fmt.Fprintf(out, "%s%d\n", labelStyle.Render("mismatched"), stats.Mismatched)
				fmt.Fprintf(out, "%s%s\n", labelStyle.Render("duration"), stats.Duration.Round(time.Millisecond))
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVarP(&cfg.BaseURL, "url", "u", "http://localhost:9080", "service base URL")
	f.StringVarP(&cfg.CharacterID, "character", "c", "1102", "leaderboard character id")
	f.StringVarP(&cfg.Variant, "variant", "v", "", "weighting variant")
	f.IntVar(&cfg.Players, "players", 100, "distinct players")
	f.IntVar(&cfg.Rounds, "rounds", 5, "submissions per player")
	f.IntVarP(&cfg.Workers, "workers", "w", 16, "concurrent requests")
	f.DurationVar(&cfg.Timeout, "timeout", 10*time.Second, "HTTP request timeout")
	f.Uint64Var(&cfg.Seed, "seed", 0, "build generator seed (0 picks one)")
	return cmd
}
