// Package scoring computes weighted item and set scores against a
// character's weighting profile.
package scoring

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/buildcard/internal/domain/model"
	"github.com/okian/buildcard/internal/domain/profile"
	"github.com/okian/buildcard/internal/domain/tier"
	"github.com/okian/buildcard/pkg/logger"
	"github.com/okian/buildcard/pkg/metrics"
)

const (
	maxLevel     = 15
	mainShare    = 0.5
	subShare     = 0.5
	percentScale = 100
)

// Profiles resolves the weighting profile of a character and variant.
type Profiles interface {
	Lookup(characterID, variant string) (profile.Profile, bool)
}

// Scorer scores items, set bonuses and whole builds.
type Scorer struct {
	profiles  Profiles
	slotRemap map[string]string
	logger    logger.Logger
}

// New creates a Scorer backed by profiles.
func New(profiles Profiles, opts ...Option) *Scorer {
	s := &Scorer{
		profiles: profiles,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bucket returns the main weight bucket of an item: "w" followed by the
// last digit of its (remapped) id.
func (s *Scorer) Bucket(itemID string) string {
	if mapped, ok := s.slotRemap[itemID]; ok {
		itemID = mapped
	}
	if itemID == "" {
		return ""
	}
	return "w" + itemID[len(itemID)-1:]
}

// ScoreItem scores one item. Without a profile the score is zero and every
// formula is NoData.
func (s *Scorer) ScoreItem(characterID string, item model.Item, variant string) model.ItemScore {
	p, ok := s.profiles.Lookup(characterID, variant)
	return s.scoreItem(p, ok, item)
}

func (s *Scorer) scoreItem(p profile.Profile, ok bool, item model.Item) model.ItemScore {
	if !ok {
		subs := make([]string, len(item.Subs))
		for i := range subs {
			subs[i] = model.NoData
		}
		return model.ItemScore{MainFormula: model.NoData, SubFormulas: subs}
	}

	levelFactor := float64(item.Level+1) / (maxLevel + 1)
	mainWeight := p.MainWeight(s.Bucket(item.ID), item.Main.Type)
	main := levelFactor * mainWeight

	var subTotal float64
	subs := make([]string, len(item.Subs))
	for i, sub := range item.Subs {
		norm, ok := p.Normalizer(sub.Type)
		if !ok {
			metrics.RecordScoringError("unknown_kind")
			s.logger.Debug(context.Background(), "no normalizer for affix",
				logger.String("kind", string(sub.Type)), logger.String("item", item.ID))
			subs[i] = model.NoData
			continue
		}
		w := p.Weight[sub.Type]
		ratio := sub.Value / norm
		subTotal += ratio * w
		subs[i] = formatFloat(round1(ratio*percentScale)) + "×" + formatFloat(round1(w))
	}

	return model.ItemScore{
		MainFormula: formatFloat(round1(levelFactor*percentScale)) + "×" + formatFloat(mainWeight) +
			"=" + formatFloat(main*percentScale),
		SubFormulas: subs,
		Score:       mainShare*main + subShare*subTotal,
		Name:        p.DisplayName(),
	}
}

// ScoreItemSet adds the profile weight of every distinct active set bonus,
// capped at model.SetBonusCap. A repeated (set, count) pair counts once.
func (s *Scorer) ScoreItemSet(characterID string, sets []model.SetCount, variant string) model.SetScore {
	p, ok := s.profiles.Lookup(characterID, variant)
	return scoreSets(p, ok, sets)
}

func scoreSets(p profile.Profile, ok bool, sets []model.SetCount) model.SetScore {
	out := model.SetScore{Cap: model.SetBonusCap}
	if !ok || len(p.Sets) == 0 {
		return out
	}

	type pair struct {
		id    string
		count int
	}
	seen := make(map[pair]struct{}, len(sets))

	var total float64
	out.Breakdown = make([]model.SetContribution, 0, len(sets))
	for _, set := range sets {
		k := pair{set.SetID, set.Count}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		w, _ := p.SetWeightFor(set.SetID, set.Count)
		total += w
		out.Breakdown = append(out.Breakdown, model.SetContribution{
			SetID:        set.SetID,
			Count:        set.Count,
			Name:         set.Name,
			Contribution: w,
		})
	}
	out.Total = math.Min(total, model.SetBonusCap)
	out.Name = p.DisplayName()
	return out
}

// ScoreBuild scores every item and the set bonuses of a build against one
// profile lookup, so a concurrent reload cannot mix two profile versions.
// Item scores are reported in percent; the build tier follows the item sum
// only.
func (s *Scorer) ScoreBuild(characterID string, items []model.Item, sets []model.SetCount, variant string) model.BuildScore {
	start := time.Now()
	defer func() {
		metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	p, ok := s.profiles.Lookup(characterID, variant)
	out := model.BuildScore{
		CharacterID: characterID,
		Variant:     variant,
		Items:       make([]model.ItemResult, 0, len(items)),
	}
	for _, item := range items {
		score := s.scoreItem(p, ok, item)
		percent := round1(score.Score * percentScale)
		out.Items = append(out.Items, model.ItemResult{
			ItemScore: score,
			ItemID:    item.ID,
			Percent:   percent,
			Tier:      tier.ClassifyItem(percent),
			Color:     tier.ItemColor(percent),
		})
		out.ItemsTotal += percent
	}
	out.ItemsTotal = round1(out.ItemsTotal)
	out.Sets = scoreSets(p, ok, sets)
	out.Total = round1(out.ItemsTotal + out.Sets.Total)
	out.BuildTier = tier.ClassifyBuild(out.ItemsTotal)
	return out
}

// DisplayValue renders a secondary affix value for the card. Speed is shown
// with one decimal; other kinds use the provider's display string.
func DisplayValue(affix model.SecondaryAffix) string {
	if affix.Type == model.KindSpeed {
		return formatFloat(round1(affix.Value))
	}
	if affix.Display != "" {
		return affix.Display
	}
	return formatFloat(affix.Value)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// formatFloat prints the shortest representation, keeping a trailing ".0"
// on whole numbers.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
