// Package rolls infers how many low, mid and high upgrade rolls produced an
// observed secondary affix value.
package rolls

import (
	_ "embed"
	"fmt"
	"math"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/okian/buildcard/internal/domain/model"
)

// searchMargin is the initial best-deviation bound of the search. A value no
// composition gets within this margin of yields the zero composition.
const searchMargin = 100.0

//go:embed rolls.yaml
var defaultTableYAML []byte

// Magnitudes holds the low, mid and high per-roll value of one kind and rarity.
type Magnitudes [3]float64

// Table maps affix kind and rarity to per-roll magnitudes.
type Table map[model.AffixKind]map[int]Magnitudes

// ParseTable decodes a YAML table of the form kind -> rarity -> [low, mid, high].
func ParseTable(data []byte) (Table, error) {
	var raw map[string]map[int][]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}

	t := make(Table, len(raw))
	for kind, byRarity := range raw {
		t[model.AffixKind(kind)] = make(map[int]Magnitudes, len(byRarity))
		for rarity, vals := range byRarity {
			if len(vals) != 3 {
				return nil, fmt.Errorf("%w: %s rarity %d has %d magnitudes", ErrInvalidTable, kind, rarity, len(vals))
			}
			if vals[0] < 0 || vals[0] > vals[1] || vals[1] > vals[2] {
				return nil, fmt.Errorf("%w: %s rarity %d magnitudes must ascend", ErrInvalidTable, kind, rarity)
			}
			t[model.AffixKind(kind)][rarity] = Magnitudes{vals[0], vals[1], vals[2]}
		}
	}
	return t, nil
}

var defaultTable = sync.OnceValue(func() Table {
	t, err := ParseTable(defaultTableYAML)
	if err != nil {
		panic(err)
	}
	return t
})

// DefaultTable returns the embedded magnitude table. Callers must not modify it.
func DefaultTable() Table { return defaultTable() }

// Option applies a configuration option to the Reconstructor.
type Option func(*Reconstructor)

// WithTable replaces the embedded magnitude table.
func WithTable(t Table) Option {
	return func(r *Reconstructor) {
		if t != nil {
			r.table = t
		}
	}
}

// Reconstructor performs roll reconstruction against a magnitude table.
type Reconstructor struct {
	table Table
}

// New creates a Reconstructor backed by the embedded table unless overridden.
func New(opts ...Option) *Reconstructor {
	r := &Reconstructor{table: DefaultTable()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Magnitudes returns the per-roll magnitudes of kind at rarity.
func (r *Reconstructor) Magnitudes(rarity int, kind model.AffixKind) (Magnitudes, error) {
	if rarity < 1 || rarity > model.MaxRarity {
		return Magnitudes{}, fmt.Errorf("%w: %d", ErrInvalidRarity, rarity)
	}
	m, ok := r.table[kind][rarity]
	if !ok {
		return Magnitudes{}, fmt.Errorf("%w: %s at rarity %d", ErrUnknownKind, kind, rarity)
	}
	return m, nil
}

// Reconstruct returns the roll composition whose sum lies closest to value.
// At most rarity+1 rolls are considered. Enumeration runs low (outer), mid,
// high (inner) and only a strictly smaller deviation replaces the current
// best, so ties resolve to the first composition found.
func (r *Reconstructor) Reconstruct(rarity int, kind model.AffixKind, value float64) (model.RollComposition, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return model.RollComposition{}, fmt.Errorf("%w: %v", ErrNegativeValue, value)
	}
	m, err := r.Magnitudes(rarity, kind)
	if err != nil {
		return model.RollComposition{}, err
	}

	maxRolls := rarity + 1
	best := model.RollComposition{}
	margin := searchMargin
	for low := 0; low <= maxRolls; low++ {
		for mid := 0; mid <= maxRolls; mid++ {
			for high := 0; high <= maxRolls; high++ {
				if low+mid+high > maxRolls {
					break
				}
				sum := float64(low)*m[0] + float64(mid)*m[1] + float64(high)*m[2]
				if d := math.Abs(sum - value); d < margin {
					margin = d
					best = model.RollComposition{Low: low, Mid: mid, High: high}
				}
			}
		}
	}
	return best, nil
}

// Annotate attaches a roll composition to every secondary affix of item.
// Affixes that cannot be reconstructed keep nil Rolls and contribute one
// error each to the returned slice.
func (r *Reconstructor) Annotate(item *model.Item) []error {
	var errs []error
	for i := range item.Subs {
		sub := &item.Subs[i]
		comp, err := r.Reconstruct(item.Rarity, sub.Type, sub.Value)
		if err != nil {
			sub.Rolls = nil
			errs = append(errs, fmt.Errorf("item %s affix %s: %w", item.ID, sub.Type, err))
			continue
		}
		sub.Rolls = &comp
	}
	return errs
}
