package model

// NoData marks a formula for which no weighting data exists.
const NoData = "-"

// SetBonusCap is the ceiling of the set bonus contribution to a build total.
const SetBonusCap = 30.0

// ItemScore is the fitness of one item plus the formulas that produced it.
type ItemScore struct {
	MainFormula string   `json:"main_formula"`
	SubFormulas []string `json:"sub_formulas"`
	Score       float64  `json:"score"`
	Name        string   `json:"name,omitempty"`
}

// SetContribution is the weight one active set bonus added.
type SetContribution struct {
	SetID        string  `json:"id"`
	Count        int     `json:"num"`
	Name         string  `json:"name,omitempty"`
	Contribution float64 `json:"score"`
}

// SetScore is the capped set bonus score of a build.
type SetScore struct {
	Breakdown []SetContribution `json:"set_scores"`
	Total     float64           `json:"score"`
	Cap       float64           `json:"cap"`
	Name      string            `json:"name,omitempty"`
}

// ItemResult is an item score with its display units and labels.
type ItemResult struct {
	ItemScore
	ItemID  string  `json:"item_id"`
	Percent float64 `json:"percent"`
	Tier    string  `json:"tier"`
	Color   string  `json:"color"`
}

// BuildScore aggregates the item and set scores of a whole build.
// ItemsTotal is the sum of item percents and drives the build tier; Total
// adds the set bonus.
type BuildScore struct {
	CharacterID string       `json:"character_id"`
	Variant     string       `json:"variant,omitempty"`
	Items       []ItemResult `json:"items"`
	ItemsTotal  float64      `json:"items_total"`
	Sets        SetScore     `json:"sets"`
	Total       float64      `json:"total"`
	BuildTier   string       `json:"build_tier"`
}
