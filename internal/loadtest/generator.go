package loadtest

import (
	"fmt"
	"math/rand/v2"

	"github.com/okian/buildcard/internal/domain/model"
)

// secondaryPool lists the affix kinds a generated item may roll, with the
// rarity 5 mid roll used to derive plausible values.
var secondaryPool = []struct {
	kind model.AffixKind
	step float64
}{
	{"HPDelta", 38.103755},
	{"AttackDelta", 19.051877},
	{"DefenceDelta", 19.051877},
	{"HPAddedRatio", 0.03888},
	{"AttackAddedRatio", 0.03888},
	{"DefenceAddedRatio", 0.0486},
	{model.KindSpeed, 2.3},
	{"CriticalChanceBase", 0.02916},
	{"CriticalDamageBase", 0.05832},
	{"StatusProbabilityBase", 0.03888},
	{"StatusResistanceBase", 0.03888},
	{"BreakDamageAddedRatioBase", 0.05832},
}

var mainBySlot = map[int]model.AffixKind{
	1: "HPDelta",
	2: "AttackDelta",
	3: "CriticalDamageBase",
	4: model.KindSpeed,
	5: "AttackAddedRatio",
	6: "BreakDamageAddedRatioBase",
}

// generator produces random but well-formed builds.
type generator struct {
	rng *rand.Rand
}

func newGenerator(seed uint64) *generator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *generator) build(characterID string) model.Build {
	b := model.Build{CharacterID: characterID}
	for slot := 1; slot <= model.SlotCount; slot++ {
		b.Items = append(b.Items, g.item(slot))
	}
	if g.rng.IntN(2) == 0 {
		b.Sets = []model.SetCount{{SetID: "102", Count: 4}}
	}
	return b
}

func (g *generator) item(slot int) model.Item {
	item := model.Item{
		ID:     fmt.Sprintf("610%d%d", g.rng.IntN(10), slot),
		Rarity: model.MaxRarity,
		Level:  g.rng.IntN(16),
		Main:   model.MainAffix{Type: mainBySlot[slot]},
	}
	for _, i := range g.rng.Perm(len(secondaryPool))[:4] {
		aff := secondaryPool[i]
		rolls := 1 + g.rng.IntN(4)
		item.Subs = append(item.Subs, model.SecondaryAffix{
			Type:  aff.kind,
			Value: aff.step * float64(rolls),
		})
	}
	return item
}
