// Package tier maps scores to tier labels and card colors.
package tier

import (
	"math"

	"github.com/okian/buildcard/internal/domain/model"
)

// Tier labels from worst to best.
const (
	D  = "D"
	C  = "C"
	B  = "B"
	A  = "A"
	S  = "S"
	SS = "SS"
	OP = "OP"
)

type band struct {
	upper float64 // exclusive
	label string
}

// itemBands holds the item table in percent units. The build table is the
// same boundaries scaled by the slot count.
var itemBands = []band{
	{20, D},
	{40, C},
	{60, B},
	{80, A},
	{100, S},
	{120, SS},
}

// Thresholds returns the exclusive upper bounds of D..SS for one item.
func Thresholds() []float64 {
	out := make([]float64, len(itemBands))
	for i, b := range itemBands {
		out[i] = b.upper
	}
	return out
}

// ClassifyItem returns the tier of an item score given in percent.
func ClassifyItem(score float64) string {
	return classify(score, 1)
}

// ClassifyBuild returns the tier of an item-score sum over a whole build.
func ClassifyBuild(score float64) string {
	return classify(score, model.SlotCount)
}

func classify(score, scale float64) string {
	if math.IsNaN(score) {
		return D
	}
	for _, b := range itemBands {
		if score < b.upper*scale {
			return b.label
		}
	}
	return OP
}

var colors = []struct {
	upper float64
	color string
}{
	{20, "#888c91"},
	{40, "#428c88"},
	{60, "#4c88c8"},
	{80, "#a068d8"},
}

// ColorTop is the color of item scores from 80 upward.
const ColorTop = "#d2ad72"

// ItemColor returns the card color for an item score in percent.
func ItemColor(score float64) string {
	if math.IsNaN(score) {
		return colors[0].color
	}
	for _, c := range colors {
		if score < c.upper {
			return c.color
		}
	}
	return ColorTop
}
