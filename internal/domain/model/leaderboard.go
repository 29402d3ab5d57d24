package model

import (
	"strconv"
	"strings"
)

// Variants that share the default weighting and leaderboard.
const (
	VariantDefault = "compatibility"
	VariantNoScore = "no_score"
)

// Snapshot is the leaderboard position of one player, derived from every
// stored score of a key at query time.
type Snapshot struct {
	Key          string  `json:"key"`
	PlayerID     string  `json:"player_id"`
	Score        float64 `json:"score"`
	PreviousBest float64 `json:"previous_best"`
	TopScore     float64 `json:"top_score"`
	Rank         int     `json:"rank"`
	Count        int     `json:"count"`
	Median       float64 `json:"median"`
	Mean         float64 `json:"mean"`
	TopPercent   float64 `json:"top_percent"`
}

// Entry is one leaderboard row.
type Entry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Score    float64 `json:"score"`
}

// ScopedID joins a character id with a weighting variant. The default
// variants map to the bare id.
func ScopedID(characterID, variant string) string {
	variant = strings.TrimSpace(variant)
	if variant == "" || variant == VariantDefault || variant == VariantNoScore {
		return characterID
	}
	return characterID + "_" + variant
}

// AliasID returns the base character id for alternate costume ids: even
// numeric ids of 8000 and above alias id-1. ok is false for every other id.
func AliasID(characterID string) (string, bool) {
	n, err := strconv.Atoi(characterID)
	if err != nil || n < 8000 || n%2 != 0 {
		return "", false
	}
	return strconv.Itoa(n - 1), true
}

// BestUpdate is the outcome of storing a submission: the player's previous
// best (Existed is false on a first submission) and every stored best of the
// key after the update.
type BestUpdate struct {
	Previous float64
	Existed  bool
	Scores   map[string]float64
}
