package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/okian/buildcard/internal/domain/model"
	"github.com/okian/buildcard/internal/domain/tier"
)

func newTierCmd() *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "tier SCORE",
		Short: "Classify a score into its tier label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := parseFloat(args[0])
			if err != nil {
				return err
			}
			var label string
			switch scope {
			case "item":
				label = tier.ClassifyItem(score)
			case "build":
				label = tier.ClassifyBuild(score)
			default:
				return fmt.Errorf("unknown scope %q: want item or build", scope)
			}
			// Build sums are colored by their per-item average.
			per := score
			if scope == "build" {
				per = score / model.SlotCount
			}
			fmt.Fprintln(cmd.OutOrStdout(), scoreStyle(per).Render(label))
			return nil
		},
	}
	cmd.Flags().StringVarP(&scope, "scope", "s", "item", "item or build")
	return cmd
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}
