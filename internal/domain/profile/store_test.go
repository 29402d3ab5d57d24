package profile_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/buildcard/internal/domain/model"
	"github.com/okian/buildcard/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleDataset = `{
    "1102": {
        "main": {"w1": {"HPDelta": 1}, "w5": {"AttackAddedRatio": 1}},
        "weight": {"CriticalChanceBase": 1, "SpeedDelta": 0.5},
        "max": 3,
        "lang": {"jp": "ゼーレ", "en": "Seele"},
        "relic_sets": [{"id": 102, "num": 4, "weight": 12}]
    },
    "1102_speed": {
        "main": {"w4": {"SpeedDelta": 1}},
        "weight": {"SpeedDelta": 1},
        "max": 3,
        "lang": {"jp": "", "en": "Seele speed"}
    },
    "8001": {
        "main": {},
        "weight": {"BreakDamageAddedRatioBase": 1},
        "max": 2,
        "lang": {"jp": "開拓者", "en": "Trailblazer"}
    }
}`

func writeDataset(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "score.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func TestStoreLookup(t *testing.T) {
	Convey("Given a loaded dataset", t, func() {
		ctx := context.Background()
		store := profile.NewStore(writeDataset(t, t.TempDir(), sampleDataset))
		So(store.Load(ctx), ShouldBeNil)
		So(store.Count(), ShouldEqual, 3)

		Convey("Default variants resolve to the bare id", func() {
			for _, variant := range []string{"", model.VariantDefault, model.VariantNoScore} {
				p, ok := store.Lookup("1102", variant)
				So(ok, ShouldBeTrue)
				So(p.DisplayName(), ShouldEqual, "ゼーレ")
			}
		})

		Convey("Other variants resolve to the suffixed key", func() {
			p, ok := store.Lookup("1102", "speed")
			So(ok, ShouldBeTrue)
			So(p.DisplayName(), ShouldEqual, "Seele speed")
			So(p.MainWeight("w4", model.KindSpeed), ShouldEqual, 1)
		})

		Convey("Alternate costume ids fall back to their base id", func() {
			p, ok := store.Lookup("8002", "")
			So(ok, ShouldBeTrue)
			So(p.DisplayName(), ShouldEqual, "開拓者")
		})

		Convey("Misses are reported without error", func() {
			_, ok := store.Lookup("9999", "")
			So(ok, ShouldBeFalse)
			_, ok = store.Lookup("1102", "unknown")
			So(ok, ShouldBeFalse)
			_, ok = store.Get("8002")
			So(ok, ShouldBeFalse)
		})

		Convey("Numeric set ids decode as strings", func() {
			p, _ := store.Get("1102")
			w, ok := p.SetWeightFor("102", 4)
			So(ok, ShouldBeTrue)
			So(w, ShouldEqual, 12)
			_, ok = p.SetWeightFor("102", 2)
			So(ok, ShouldBeFalse)
		})

		Convey("List filters by prefix", func() {
			So(store.List("1102"), ShouldHaveLength, 2)
			So(store.List("8"), ShouldHaveLength, 1)
			So(store.List(""), ShouldHaveLength, 3)
		})
	})
}

func TestStoreAliasPrecedence(t *testing.T) {
	Convey("Given a dataset that has both 8001 and 8002", t, func() {
		store := profile.NewStore(writeDataset(t, t.TempDir(),
			`{"8001": {"main": {}, "weight": {}, "max": 1, "lang": {"jp": "base", "en": ""}},
			  "8002": {"main": {}, "weight": {}, "max": 1, "lang": {"jp": "own", "en": ""}}}`))
		So(store.Load(context.Background()), ShouldBeNil)

		Convey("The id's own profile wins over the alias", func() {
			p, ok := store.Lookup("8002", "")
			So(ok, ShouldBeTrue)
			So(p.DisplayName(), ShouldEqual, "own")
		})
	})
}

func TestStoreLoadFailures(t *testing.T) {
	Convey("Given a store", t, func() {
		ctx := context.Background()
		dir := t.TempDir()

		Convey("A missing file loads as an empty dataset", func() {
			store := profile.NewStore(filepath.Join(dir, "absent.json"))
			So(store.Load(ctx), ShouldBeNil)
			So(store.Count(), ShouldEqual, 0)
		})

		Convey("A corrupt file keeps the previous snapshot", func() {
			path := writeDataset(t, dir, sampleDataset)
			store := profile.NewStore(path)
			So(store.Load(ctx), ShouldBeNil)

			So(os.WriteFile(path, []byte("{not json"), 0o644), ShouldBeNil)
			err := store.Load(ctx)
			So(errors.Is(err, profile.ErrLoadProfiles), ShouldBeTrue)
			So(store.Count(), ShouldEqual, 3)
		})
	})
}

func TestStorePut(t *testing.T) {
	Convey("Given a loaded store", t, func() {
		ctx := context.Background()
		path := writeDataset(t, t.TempDir(), sampleDataset)
		store := profile.NewStore(path)
		So(store.Load(ctx), ShouldBeNil)

		p := profile.Empty()
		p.Weight[model.KindSpeed] = 1
		p.Lang = profile.Lang{JP: "新", EN: "New"}

		Convey("When putting a new profile", func() {
			So(store.Put(ctx, "1205", p), ShouldBeNil)

			Convey("Then it is visible immediately and persisted", func() {
				got, ok := store.Get("1205")
				So(ok, ShouldBeTrue)
				So(got.Weight[model.KindSpeed], ShouldEqual, 1)

				raw, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				var onDisk map[string]json.RawMessage
				So(json.Unmarshal(raw, &onDisk), ShouldBeNil)
				So(onDisk, ShouldContainKey, "1205")
				So(onDisk, ShouldContainKey, "1102")

				reopened := profile.NewStore(path)
				So(reopened.Load(ctx), ShouldBeNil)
				So(reopened.Count(), ShouldEqual, 4)
			})
		})

		Convey("An empty key is rejected", func() {
			So(errors.Is(store.Put(ctx, "  ", p), profile.ErrEmptyKey), ShouldBeTrue)
		})

		Convey("Readers never observe a torn dataset during concurrent puts", func() {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(2)
				go func(i int) {
					defer wg.Done()
					_ = store.Put(ctx, "x"+string(rune('a'+i)), p)
				}(i)
				go func() {
					defer wg.Done()
					_, ok := store.Lookup("1102", "")
					if !ok {
						t.Error("existing profile disappeared during put")
					}
				}()
			}
			wg.Wait()
			So(store.Count(), ShouldEqual, 11)
		})
	})
}

func TestNormalizer(t *testing.T) {
	Convey("Given profiles with and without overrides", t, func() {
		plain := profile.Empty()
		custom := profile.Empty()
		custom.Normalizers = map[model.AffixKind]float64{model.KindSpeed: 10}

		Convey("Defaults come from the embedded table", func() {
			n, ok := plain.Normalizer(model.KindSpeed)
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, profile.DefaultNormalizers()[model.KindSpeed])
		})

		Convey("Profile overrides win", func() {
			n, ok := custom.Normalizer(model.KindSpeed)
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 10)
		})

		Convey("Unknown kinds have no normalizer", func() {
			_, ok := plain.Normalizer("LuckDelta")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestWatch(t *testing.T) {
	Convey("Given a watched store", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		path := writeDataset(t, t.TempDir(), sampleDataset)
		store := profile.NewStore(path, profile.WithDebounce(20*time.Millisecond))
		So(store.Load(ctx), ShouldBeNil)

		done := make(chan error, 1)
		go func() { done <- store.Watch(ctx) }()
		time.Sleep(100 * time.Millisecond)

		Convey("When the file is rewritten externally", func() {
			So(os.WriteFile(path, []byte(`{"1001": {"main": {}, "weight": {}, "max": 1, "lang": {"jp": "", "en": "March"}}}`), 0o644), ShouldBeNil)

			Convey("Then the dataset is reloaded", func() {
				deadline := time.Now().Add(3 * time.Second)
				for store.Count() != 1 && time.Now().Before(deadline) {
					time.Sleep(20 * time.Millisecond)
				}
				So(store.Count(), ShouldEqual, 1)
				_, ok := store.Get("1001")
				So(ok, ShouldBeTrue)

				cancel()
				So(<-done, ShouldBeNil)
			})
		})
	})
}
