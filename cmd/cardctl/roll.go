package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/buildcard/internal/domain/model"
	"github.com/okian/buildcard/internal/domain/rolls"
)

func newRollCmd() *cobra.Command {
	var (
		rarity int
		kind   string
	)
	cmd := &cobra.Command{
		Use:   "roll VALUE",
		Short: "Reconstruct the low, mid and high rolls behind an affix value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseFloat(args[0])
			if err != nil {
				return err
			}
			comp, err := rolls.New().Reconstruct(rarity, model.AffixKind(kind), value)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s %v (rarity %d)", kind, value, rarity)))
			fmt.Fprintf(out, "%s%d\n", labelStyle.Render("low"), comp.Low)
			fmt.Fprintf(out, "%s%d\n", labelStyle.Render("mid"), comp.Mid)
			fmt.Fprintf(out, "%s%d\n", labelStyle.Render("high"), comp.High)
			fmt.Fprintf(out, "%s%d\n", labelStyle.Render("total"), comp.Total())
			return nil
		},
	}
	cmd.Flags().IntVarP(&rarity, "rarity", "r", model.MaxRarity, "item rarity (1-5)")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "affix kind, e.g. CriticalChanceBase")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}
