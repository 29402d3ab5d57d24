package tier_test

import (
	"math"
	"testing"

	"github.com/okian/buildcard/internal/domain/model"
	"github.com/okian/buildcard/internal/domain/tier"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassifyItem(t *testing.T) {
	Convey("Given item scores around each boundary", t, func() {
		cases := []struct {
			score float64
			want  string
		}{
			{0, tier.D},
			{19.9, tier.D},
			{20, tier.C},
			{39.9, tier.C},
			{40, tier.B},
			{60, tier.A},
			{79.99, tier.A},
			{80, tier.S},
			{100, tier.SS},
			{119.9, tier.SS},
			{120, tier.OP},
			{500, tier.OP},
			{-5, tier.D},
		}
		for _, c := range cases {
			So(tier.ClassifyItem(c.score), ShouldEqual, c.want)
		}
	})

	Convey("NaN classifies as D", t, func() {
		So(tier.ClassifyItem(math.NaN()), ShouldEqual, tier.D)
		So(tier.ClassifyBuild(math.NaN()), ShouldEqual, tier.D)
	})
}

func TestClassifyBuild(t *testing.T) {
	Convey("Given the item thresholds", t, func() {
		Convey("Build boundaries are the item boundaries times the slot count", func() {
			for _, th := range tier.Thresholds() {
				scaled := th * model.SlotCount
				So(tier.ClassifyBuild(scaled-0.1), ShouldEqual, tier.ClassifyItem(th-0.1/model.SlotCount))
				So(tier.ClassifyBuild(scaled), ShouldEqual, tier.ClassifyItem(th))
			}
		})

		Convey("Known build values classify as expected", func() {
			So(tier.ClassifyBuild(119.9), ShouldEqual, tier.D)
			So(tier.ClassifyBuild(120), ShouldEqual, tier.C)
			So(tier.ClassifyBuild(480), ShouldEqual, tier.S)
			So(tier.ClassifyBuild(719.9), ShouldEqual, tier.SS)
			So(tier.ClassifyBuild(720), ShouldEqual, tier.OP)
		})
	})
}

func TestItemColor(t *testing.T) {
	Convey("Given item scores", t, func() {
		So(tier.ItemColor(0), ShouldEqual, "#888c91")
		So(tier.ItemColor(19.5), ShouldEqual, "#888c91")
		So(tier.ItemColor(20), ShouldEqual, "#428c88")
		So(tier.ItemColor(45), ShouldEqual, "#4c88c8")
		So(tier.ItemColor(79.9), ShouldEqual, "#a068d8")
		So(tier.ItemColor(80), ShouldEqual, tier.ColorTop)
		So(tier.ItemColor(150), ShouldEqual, tier.ColorTop)
	})
}
