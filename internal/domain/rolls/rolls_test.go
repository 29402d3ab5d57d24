package rolls_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/buildcard/internal/domain/model"
	"github.com/okian/buildcard/internal/domain/rolls"
	. "github.com/smartystreets/goconvey/convey"
)

// separable magnitudes: with at most six rolls every composition sums to a
// distinct base-7 number.
func separableTable() rolls.Table {
	byRarity := map[int]rolls.Magnitudes{}
	for r := 1; r <= model.MaxRarity; r++ {
		byRarity[r] = rolls.Magnitudes{1, 7, 49}
	}
	return rolls.Table{"Separable": byRarity}
}

func TestReconstruct(t *testing.T) {
	Convey("Given a reconstructor with magnitudes 2/3/4 at rarity 5", t, func() {
		r := rolls.New(rolls.WithTable(rolls.Table{
			"CriticalChanceBase": {5: {2.0, 3.0, 4.0}},
		}))

		Convey("When the observed value is 14", func() {
			comp, err := r.Reconstruct(5, "CriticalChanceBase", 14)

			Convey("Then the first exact composition in enumeration order wins", func() {
				So(err, ShouldBeNil)
				So(comp, ShouldResemble, model.RollComposition{Low: 0, Mid: 2, High: 2})
				So(float64(comp.Low)*2+float64(comp.Mid)*3+float64(comp.High)*4, ShouldEqual, 14)
				So(comp.Total(), ShouldBeLessThanOrEqualTo, 6)
			})
		})

		Convey("When the value is beyond the search margin", func() {
			comp, err := r.Reconstruct(5, "CriticalChanceBase", 1000)

			Convey("Then the zero composition is returned without error", func() {
				So(err, ShouldBeNil)
				So(comp, ShouldResemble, model.RollComposition{})
			})
		})

		Convey("When the value is zero", func() {
			comp, err := r.Reconstruct(5, "CriticalChanceBase", 0)

			Convey("Then no rolls are inferred", func() {
				So(err, ShouldBeNil)
				So(comp.Total(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given separable magnitudes", t, func() {
		r := rolls.New(rolls.WithTable(separableTable()))

		Convey("Every valid composition round-trips for every rarity", func() {
			for rarity := 1; rarity <= model.MaxRarity; rarity++ {
				maxRolls := rarity + 1
				for low := 0; low <= maxRolls; low++ {
					for mid := 0; low+mid <= maxRolls; mid++ {
						for high := 0; low+mid+high <= maxRolls; high++ {
							value := float64(low) + 7*float64(mid) + 49*float64(high)
							comp, err := r.Reconstruct(rarity, "Separable", value)
							So(err, ShouldBeNil)
							So(comp, ShouldResemble, model.RollComposition{Low: low, Mid: mid, High: high})
						}
					}
				}
			}
		})

		Convey("The rarity bound caps the roll count", func() {
			comp, err := r.Reconstruct(1, "Separable", 3)
			So(err, ShouldBeNil)
			So(comp.Total(), ShouldBeLessThanOrEqualTo, 2)
			So(comp, ShouldResemble, model.RollComposition{Low: 2})
		})
	})

	Convey("Given malformed input", t, func() {
		r := rolls.New()

		Convey("Out-of-range rarity is rejected", func() {
			for _, rarity := range []int{0, 6, -1} {
				_, err := r.Reconstruct(rarity, "CriticalChanceBase", 0.05)
				So(errors.Is(err, rolls.ErrInvalidRarity), ShouldBeTrue)
				So(errors.Is(err, rolls.ErrMalformedInput), ShouldBeTrue)
			}
		})

		Convey("Negative and non-finite values are rejected", func() {
			for _, v := range []float64{-0.1, math.NaN(), math.Inf(1)} {
				_, err := r.Reconstruct(5, "CriticalChanceBase", v)
				So(errors.Is(err, rolls.ErrNegativeValue), ShouldBeTrue)
			}
		})

		Convey("Unknown kinds are rejected", func() {
			_, err := r.Reconstruct(5, "LuckDelta", 1)
			So(errors.Is(err, rolls.ErrUnknownKind), ShouldBeTrue)
			So(errors.Is(err, rolls.ErrMalformedInput), ShouldBeTrue)
		})
	})
}

func TestDefaultTable(t *testing.T) {
	Convey("Given the embedded magnitude table", t, func() {
		r := rolls.New()

		Convey("Five-star crit chance magnitudes ascend", func() {
			m, err := r.Magnitudes(5, "CriticalChanceBase")
			So(err, ShouldBeNil)
			So(m[0], ShouldBeLessThan, m[1])
			So(m[1], ShouldBeLessThan, m[2])
		})

		Convey("A three-roll crit chance value reconstructs to three rolls", func() {
			m, _ := r.Magnitudes(5, "CriticalChanceBase")
			value := m[0] + 2*m[2]
			comp, err := r.Reconstruct(5, "CriticalChanceBase", value)
			So(err, ShouldBeNil)
			So(comp.Total(), ShouldEqual, 3)
			sum := float64(comp.Low)*m[0] + float64(comp.Mid)*m[1] + float64(comp.High)*m[2]
			So(sum, ShouldAlmostEqual, value, 1e-9)
		})

		Convey("Speed is present for every table rarity", func() {
			for rarity := 2; rarity <= 5; rarity++ {
				_, err := r.Magnitudes(rarity, model.KindSpeed)
				So(err, ShouldBeNil)
			}
		})
	})
}

func TestAnnotate(t *testing.T) {
	Convey("Given an item with a known and an unknown secondary affix", t, func() {
		r := rolls.New(rolls.WithTable(rolls.Table{
			"CriticalChanceBase": {5: {2.0, 3.0, 4.0}},
		}))
		item := model.Item{
			ID:     "61011",
			Rarity: 5,
			Subs: []model.SecondaryAffix{
				{Type: "CriticalChanceBase", Value: 14},
				{Type: "LuckDelta", Value: 1},
			},
		}

		errs := r.Annotate(&item)

		Convey("Then the known affix is annotated and the other reported", func() {
			So(item.Subs[0].Rolls, ShouldNotBeNil)
			So(*item.Subs[0].Rolls, ShouldResemble, model.RollComposition{Mid: 2, High: 2})
			So(item.Subs[1].Rolls, ShouldBeNil)
			So(errs, ShouldHaveLength, 1)
			So(errors.Is(errs[0], rolls.ErrUnknownKind), ShouldBeTrue)
		})
	})
}

func TestParseTable(t *testing.T) {
	Convey("Given YAML tables", t, func() {
		Convey("A valid table parses", func() {
			tbl, err := rolls.ParseTable([]byte("SpeedDelta:\n  5: [2.0, 2.3, 2.6]\n"))
			So(err, ShouldBeNil)
			So(tbl["SpeedDelta"][5], ShouldResemble, rolls.Magnitudes{2.0, 2.3, 2.6})
		})

		Convey("Wrong arity is rejected", func() {
			_, err := rolls.ParseTable([]byte("SpeedDelta:\n  5: [2.0, 2.3]\n"))
			So(errors.Is(err, rolls.ErrInvalidTable), ShouldBeTrue)
		})

		Convey("Descending magnitudes are rejected", func() {
			_, err := rolls.ParseTable([]byte("SpeedDelta:\n  5: [2.6, 2.3, 2.0]\n"))
			So(errors.Is(err, rolls.ErrInvalidTable), ShouldBeTrue)
		})

		Convey("Broken YAML is rejected", func() {
			_, err := rolls.ParseTable([]byte("SpeedDelta: [\n"))
			So(errors.Is(err, rolls.ErrInvalidTable), ShouldBeTrue)
		})
	})
}
