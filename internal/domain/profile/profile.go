// Package profile holds per-character weighting profiles and the store that
// serves them.
package profile

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/okian/buildcard/internal/domain/model"
)

// Buckets are the main-affix weight groups, one per equipment slot.
var Buckets = []string{"w1", "w2", "w3", "w4", "w5", "w6"}

//go:embed normalizers.yaml
var defaultNormalizersYAML []byte

// Lang carries the display names of a profile.
type Lang struct {
	JP string `json:"jp"`
	EN string `json:"en"`
}

// SetWeight is the score an active set bonus adds to a build.
type SetWeight struct {
	SetID  string  `json:"id" validate:"required"`
	Count  int     `json:"num" validate:"min=1"`
	Weight float64 `json:"weight"`
}

// UnmarshalJSON accepts set ids written as numbers or strings.
func (w *SetWeight) UnmarshalJSON(data []byte) error {
	var raw struct {
		SetID  json.RawMessage `json:"id"`
		Count  int             `json:"num"`
		Weight float64         `json:"weight"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id := strings.TrimSpace(string(raw.SetID))
	if unquoted, err := unquote(raw.SetID); err == nil {
		id = unquoted
	}
	*w = SetWeight{SetID: id, Count: raw.Count, Weight: raw.Weight}
	return nil
}

func unquote(raw json.RawMessage) (string, error) {
	var s string
	err := json.Unmarshal(raw, &s)
	return s, err
}

// Profile weights the affixes of one character. Main is keyed by bucket
// ("w1".."w6"), then by main affix kind. Normalizers override the default
// per-kind normalizers for this profile only.
type Profile struct {
	Main        map[string]map[model.AffixKind]float64 `json:"main" validate:"required,dive,keys,oneof=w1 w2 w3 w4 w5 w6,endkeys"`
	Weight      map[model.AffixKind]float64            `json:"weight" validate:"required"`
	Max         float64                                `json:"max" validate:"gte=0"`
	Lang        Lang                                   `json:"lang"`
	Sets        []SetWeight                            `json:"relic_sets,omitempty" validate:"dive"`
	Normalizers map[model.AffixKind]float64            `json:"normalizers,omitempty" validate:"omitempty,dive,gt=0"`
}

// Empty returns a profile with every bucket present and no weights.
func Empty() Profile {
	main := make(map[string]map[model.AffixKind]float64, len(Buckets))
	for _, b := range Buckets {
		main[b] = map[model.AffixKind]float64{}
	}
	return Profile{Main: main, Weight: map[model.AffixKind]float64{}}
}

// DisplayName prefers the Japanese name, as the card does.
func (p Profile) DisplayName() string {
	if p.Lang.JP != "" {
		return p.Lang.JP
	}
	return p.Lang.EN
}

// MainWeight returns the weight of a main affix kind in bucket, 0 when unset.
func (p Profile) MainWeight(bucket string, kind model.AffixKind) float64 {
	return p.Main[bucket][kind]
}

// SetWeightFor returns the weight of a (set, count) pair.
func (p Profile) SetWeightFor(setID string, count int) (float64, bool) {
	for _, w := range p.Sets {
		if w.SetID == setID && w.Count == count {
			return w.Weight, true
		}
	}
	return 0, false
}

// Normalizer returns the value that maps kind onto the unit scale.
func (p Profile) Normalizer(kind model.AffixKind) (float64, bool) {
	if n, ok := p.Normalizers[kind]; ok && n > 0 {
		return n, true
	}
	n, ok := DefaultNormalizers()[kind]
	return n, ok && n > 0
}

var defaultNormalizers = sync.OnceValue(func() map[model.AffixKind]float64 {
	var raw map[string]float64
	if err := yaml.Unmarshal(defaultNormalizersYAML, &raw); err != nil {
		panic(fmt.Sprintf("embedded normalizers: %v", err))
	}
	out := make(map[model.AffixKind]float64, len(raw))
	for k, v := range raw {
		out[model.AffixKind(k)] = v
	}
	return out
})

// DefaultNormalizers returns the embedded normalizer table. Callers must not
// modify it.
func DefaultNormalizers() map[model.AffixKind]float64 { return defaultNormalizers() }
