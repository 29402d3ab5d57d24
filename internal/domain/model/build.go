// Package model contains domain models passed between layers.
package model

// AffixKind identifies a stat bonus, e.g. "CriticalChanceBase" or "SpeedDelta".
type AffixKind string

// Affix kinds with special handling.
const (
	KindSpeed AffixKind = "SpeedDelta"
)

// MaxRarity is the highest item rarity.
const MaxRarity = 5

// SlotCount is the number of equipment slots in a build.
const SlotCount = 6

// RollComposition counts the low, mid and high upgrade rolls behind a
// secondary affix value.
type RollComposition struct {
	Low  int `json:"low"`
	Mid  int `json:"mid"`
	High int `json:"high"`
}

// Total returns the number of rolls.
func (r RollComposition) Total() int { return r.Low + r.Mid + r.High }

// MainAffix is the primary bonus of an item.
type MainAffix struct {
	Type    AffixKind `json:"type" validate:"required"`
	Value   float64   `json:"value"`
	Display string    `json:"display,omitempty"`
}

// SecondaryAffix is one upgradeable bonus of an item. Rolls is attached by
// reconstruction and stays nil when the value could not be explained.
type SecondaryAffix struct {
	Type    AffixKind        `json:"type" validate:"required"`
	Value   float64          `json:"value" validate:"gte=0"`
	Display string           `json:"display,omitempty"`
	Rolls   *RollComposition `json:"rolls,omitempty"`
}

// Item is one equipped piece. ID is the item type id; its last digit encodes
// the slot and selects the main-affix weight bucket.
type Item struct {
	ID     string           `json:"id" validate:"required"`
	Name   string           `json:"name,omitempty"`
	Rarity int              `json:"rarity" validate:"min=1,max=5"`
	Level  int              `json:"level" validate:"min=0"`
	Main   MainAffix        `json:"main_affix"`
	Subs   []SecondaryAffix `json:"sub_affix" validate:"dive"`
	SetID  string           `json:"set_id,omitempty"`
}

// SetCount is an active set bonus: Count items of SetID are equipped.
type SetCount struct {
	SetID string `json:"id" validate:"required"`
	Count int    `json:"num" validate:"min=1"`
	Name  string `json:"name,omitempty"`
}

// Build is a character's equipped gear as supplied by the data provider.
type Build struct {
	CharacterID string     `json:"id" validate:"required"`
	Name        string     `json:"name,omitempty"`
	Items       []Item     `json:"relics" validate:"max=6,dive"`
	Sets        []SetCount `json:"relic_sets" validate:"dive"`
}
