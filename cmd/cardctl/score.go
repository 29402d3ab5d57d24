package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/okian/buildcard/internal/domain/model"
	"github.com/okian/buildcard/internal/domain/profile"
	"github.com/okian/buildcard/internal/domain/rolls"
	"github.com/okian/buildcard/internal/domain/scoring"
)

func newScoreCmd() *cobra.Command {
	var (
		profilesPath string
		remapPath    string
		variant      string
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "score BUILD.json",
		Short: "Score a build file against the weighting profiles",
		Long: `Score reads one character build (the provider's JSON shape, "-" for stdin),
reconstructs its upgrade rolls and prints every item score with its tier.
Nothing is submitted to a leaderboard.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			build, err := readBuild(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			store := profile.NewStore(profilesPath)
			if err := store.Load(cmd.Context()); err != nil {
				return err
			}

			var opts []scoring.Option
			if remapPath != "" {
				remap, err := scoring.LoadSlotRemap(remapPath)
				if err != nil {
					return err
				}
				opts = append(opts, scoring.WithSlotRemap(remap))
			}

			var rollErrs []error
			r := rolls.New()
			for i := range build.Items {
				rollErrs = append(rollErrs, r.Annotate(&build.Items[i])...)
			}
			result := scoring.New(store, opts...).ScoreBuild(build.CharacterID, build.Items, build.Sets, variant)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printBuildScore(cmd.OutOrStdout(), build, result, rollErrs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&profilesPath, "profiles", "p", "data/score.json", "weighting profile dataset")
	cmd.Flags().StringVar(&remapPath, "slot-remap", "", "optional item id to slot id remap table")
	cmd.Flags().StringVarP(&variant, "variant", "v", "", "weighting variant")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw score as JSON")
	return cmd
}

func readBuild(stdin io.Reader, path string) (model.Build, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return model.Build{}, fmt.Errorf("read build: %w", err)
	}
	var b model.Build
	if err := json.Unmarshal(data, &b); err != nil {
		return model.Build{}, fmt.Errorf("decode build: %w", err)
	}
	if err := validator.New().Struct(b); err != nil {
		return model.Build{}, fmt.Errorf("invalid build: %w", err)
	}
	return b, nil
}

func printBuildScore(w io.Writer, build model.Build, s model.BuildScore, rollErrs []error) {
	name := build.Name
	if name == "" {
		name = s.Sets.Name
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s %s", build.CharacterID, name)))

	for i, item := range s.Items {
		rolled := make([]string, 0, len(build.Items[i].Subs))
		for _, sub := range build.Items[i].Subs {
			entry := string(sub.Type) + " " + scoring.DisplayValue(sub)
			if sub.Rolls != nil {
				entry += fmt.Sprintf(" (%d)", sub.Rolls.Total())
			}
			rolled = append(rolled, entry)
		}
		fmt.Fprintf(w, "%s%s %s\n",
			labelStyle.Render(item.ItemID),
			scoreStyle(item.Percent).Render(fmt.Sprintf("%5.1f %-2s", item.Percent, item.Tier)),
			dimStyle.Render(strings.Join(rolled, ", ")))
	}

	for _, set := range s.Sets.Breakdown {
		fmt.Fprintf(w, "%s+%.1f\n", labelStyle.Render(fmt.Sprintf("set %s×%d", set.SetID, set.Count)), set.Contribution)
	}
	fmt.Fprintf(w, "%s%.1f\n", labelStyle.Render("items"), s.ItemsTotal)
	fmt.Fprintf(w, "%s%.1f\n", labelStyle.Render("total"), s.Total)
	fmt.Fprintf(w, "%s%s\n", labelStyle.Render("tier"),
		scoreStyle(s.ItemsTotal/model.SlotCount).Render(s.BuildTier))

	for _, err := range rollErrs {
		fmt.Fprintln(w, errorStyle.Render(err.Error()))
	}
}
