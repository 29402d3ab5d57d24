package leaderboard

import (
	"sort"

	"github.com/okian/buildcard/internal/domain/model"
)

// Rank returns the competition rank of score within scores: one plus the
// number of strictly higher scores. Ties share a rank and the next rank
// skips past them.
func Rank(scores map[string]float64, score float64) int {
	rank := 1
	for _, s := range scores {
		if s > score {
			rank++
		}
	}
	return rank
}

// Median returns the median of the stored scores, 0 when there are none.
func Median(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	vals := make([]float64, 0, len(scores))
	for _, s := range scores {
		vals = append(vals, s)
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}

// Mean returns the arithmetic mean of the stored scores, 0 when there are none.
func Mean(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// Entries returns every stored score ordered by score descending, then
// player id ascending, with competition ranks assigned.
func Entries(scores map[string]float64) []model.Entry {
	entries := make([]model.Entry, 0, len(scores))
	for id, s := range scores {
		entries = append(entries, model.Entry{PlayerID: id, Score: s})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
	for i := range entries {
		if i > 0 && entries[i].Score == entries[i-1].Score {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
	return entries
}

// snapshot derives the position of playerID from the stored scores.
func snapshot(key, playerID string, scores map[string]float64, submitted, previous float64) model.Snapshot {
	best := scores[playerID]
	rank := Rank(scores, best)
	count := len(scores)
	top := submitted
	if previous > submitted {
		top = previous
	}
	var topPercent float64
	if count > 0 {
		topPercent = float64(rank) / float64(count) * 100
	}
	return model.Snapshot{
		Key:          key,
		PlayerID:     playerID,
		Score:        submitted,
		PreviousBest: previous,
		TopScore:     top,
		Rank:         rank,
		Count:        count,
		Median:       Median(scores),
		Mean:         Mean(scores),
		TopPercent:   topPercent,
	}
}
