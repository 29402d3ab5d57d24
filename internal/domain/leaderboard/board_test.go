package leaderboard_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/okian/buildcard/internal/domain/leaderboard"
	"github.com/okian/buildcard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type memRepo struct {
	mu   sync.Mutex
	data map[string]map[string]float64
}

func newMemRepo() *memRepo { return &memRepo{data: map[string]map[string]float64{}} }

func (m *memRepo) UpsertBest(_ context.Context, key, playerID string, score float64) (model.BestUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	scores := m.data[key]
	if scores == nil {
		scores = map[string]float64{}
		m.data[key] = scores
	}
	prev, existed := scores[playerID]
	if !existed || score > prev {
		scores[playerID] = score
	}
	return model.BestUpdate{Previous: prev, Existed: existed, Scores: copyScores(scores)}, nil
}

func (m *memRepo) Scores(_ context.Context, key string) (map[string]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyScores(m.data[key]), nil
}

func copyScores(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type brokenRepo struct{ read map[string]float64 }

var errDisk = errors.New("disk full")

func (b brokenRepo) UpsertBest(context.Context, string, string, float64) (model.BestUpdate, error) {
	return model.BestUpdate{Scores: copyScores(b.read)}, errDisk
}

func (b brokenRepo) Scores(context.Context, string) (map[string]float64, error) {
	return nil, errDisk
}

type slowRepo struct{}

func (slowRepo) UpsertBest(ctx context.Context, _, _ string, _ float64) (model.BestUpdate, error) {
	<-ctx.Done()
	return model.BestUpdate{}, ctx.Err()
}

func (slowRepo) Scores(ctx context.Context, _ string) (map[string]float64, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestSnapshotMath(t *testing.T) {
	Convey("Given stored scores", t, func() {
		Convey("Ties share the minimum rank", func() {
			entries := leaderboard.Entries(map[string]float64{"a": 50, "b": 50, "c": 30})
			So(entries[0].Rank, ShouldEqual, 1)
			So(entries[1].Rank, ShouldEqual, 1)
			So(entries[2].Rank, ShouldEqual, 3)
			So(entries[2].PlayerID, ShouldEqual, "c")
			So(leaderboard.Rank(map[string]float64{"a": 50, "b": 50, "c": 30}, 30), ShouldEqual, 3)
		})

		Convey("Median and mean of an even set", func() {
			scores := map[string]float64{"a": 10, "b": 20, "c": 30, "d": 40}
			So(leaderboard.Median(scores), ShouldEqual, 25)
			So(leaderboard.Mean(scores), ShouldEqual, 25)
		})

		Convey("A single score is its own median and mean", func() {
			scores := map[string]float64{"a": 10}
			So(leaderboard.Median(scores), ShouldEqual, 10)
			So(leaderboard.Mean(scores), ShouldEqual, 10)
			So(leaderboard.Rank(scores, 10), ShouldEqual, 1)
		})

		Convey("An empty set yields zeros", func() {
			So(leaderboard.Median(nil), ShouldEqual, 0)
			So(leaderboard.Mean(nil), ShouldEqual, 0)
			So(leaderboard.Entries(nil), ShouldBeEmpty)
		})
	})
}

func TestSubmit(t *testing.T) {
	Convey("Given an empty board", t, func() {
		ctx := context.Background()
		board := leaderboard.New(newMemRepo(), leaderboard.WithBackendName("mem"))

		Convey("The first submission is rank 1 of 1", func() {
			snap, err := board.Submit(ctx, "1102", "", "100", 50)
			So(err, ShouldBeNil)
			So(snap.Rank, ShouldEqual, 1)
			So(snap.Count, ShouldEqual, 1)
			So(snap.PreviousBest, ShouldEqual, 0)
			So(snap.TopScore, ShouldEqual, 50)
			So(snap.TopPercent, ShouldEqual, 100)
			So(snap.Key, ShouldEqual, "1102")
		})

		Convey("A best score never decreases", func() {
			_, _ = board.Submit(ctx, "1102", "", "100", 50)
			snap, err := board.Submit(ctx, "1102", "", "100", 40)
			So(err, ShouldBeNil)
			So(snap.PreviousBest, ShouldEqual, 50)
			So(snap.TopScore, ShouldEqual, 50)
			So(snap.Score, ShouldEqual, 40)

			stats, err := board.Stats(ctx, "1102", "", "100")
			So(err, ShouldBeNil)
			So(stats.Score, ShouldEqual, 50)

			snap, _ = board.Submit(ctx, "1102", "", "100", 60)
			So(snap.PreviousBest, ShouldEqual, 50)
			So(snap.TopScore, ShouldEqual, 60)
		})

		Convey("Ranks, median and mean cover every player", func() {
			_, _ = board.Submit(ctx, "1102", "", "a", 50)
			_, _ = board.Submit(ctx, "1102", "", "b", 50)
			snap, err := board.Submit(ctx, "1102", "", "c", 30)
			So(err, ShouldBeNil)
			So(snap.Rank, ShouldEqual, 3)
			So(snap.Count, ShouldEqual, 3)
			So(snap.Median, ShouldEqual, 50)
			So(snap.Mean, ShouldAlmostEqual, 130.0/3, 1e-9)
			So(snap.TopPercent, ShouldEqual, 100)

			stats, _ := board.Stats(ctx, "1102", "", "a")
			So(stats.Rank, ShouldEqual, 1)
		})

		Convey("Variants keep separate leaderboards", func() {
			_, _ = board.Submit(ctx, "1102", "", "a", 50)
			_, _ = board.Submit(ctx, "1102", model.VariantDefault, "b", 40)
			snap, _ := board.Submit(ctx, "1102", "speed", "c", 10)
			So(snap.Key, ShouldEqual, "1102_speed")
			So(snap.Count, ShouldEqual, 1)

			entries, total, err := board.Top(ctx, "1102", "", 10)
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 2)
			So(entries[0].PlayerID, ShouldEqual, "a")
		})

		Convey("Invalid input is rejected", func() {
			_, err := board.Submit(ctx, "1102", "", " ", 10)
			So(errors.Is(err, leaderboard.ErrInvalidPlayer), ShouldBeTrue)
			_, err = board.Submit(ctx, "1102", "", "a", math.NaN())
			So(errors.Is(err, leaderboard.ErrInvalidScore), ShouldBeTrue)
			_, err = board.Submit(ctx, "1102", "", "a", -1)
			So(errors.Is(err, leaderboard.ErrInvalidScore), ShouldBeTrue)
			_, _, err = board.Top(ctx, "1102", "", 0)
			So(errors.Is(err, leaderboard.ErrInvalidLimit), ShouldBeTrue)
			_, err = board.Stats(ctx, "1102", "", "ghost")
			So(errors.Is(err, leaderboard.ErrPlayerNotFound), ShouldBeTrue)
		})

		Convey("Top truncates to the limit", func() {
			for i := 0; i < 5; i++ {
				_, _ = board.Submit(ctx, "1102", "", fmt.Sprintf("p%d", i), float64(i*10))
			}
			entries, total, err := board.Top(ctx, "1102", "", 3)
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 5)
			So(entries, ShouldHaveLength, 3)
			So(entries[0].Score, ShouldEqual, 40)
		})
	})
}

func TestSubmitConcurrent(t *testing.T) {
	Convey("Given many concurrent submissions to one key", t, func() {
		ctx := context.Background()
		board := leaderboard.New(newMemRepo())

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			for round := 0; round < 4; round++ {
				wg.Add(1)
				go func(i, round int) {
					defer wg.Done()
					_, _ = board.Submit(ctx, "1102", "", fmt.Sprintf("p%d", i), float64(round*100+i))
				}(i, round)
			}
		}
		wg.Wait()

		Convey("Then no player is lost and every best is the maximum", func() {
			entries, total, err := board.Top(ctx, "1102", "", 100)
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 50)
			for _, e := range entries {
				var i int
				_, _ = fmt.Sscanf(e.PlayerID, "p%d", &i)
				So(e.Score, ShouldEqual, float64(300+i))
			}
		})
	})
}

func TestStorageFailures(t *testing.T) {
	Convey("Given a repository that cannot write", t, func() {
		ctx := context.Background()
		board := leaderboard.New(brokenRepo{read: map[string]float64{"a": 80}})

		Convey("Submit still returns a snapshot with ErrWriteFailed", func() {
			snap, err := board.Submit(ctx, "1102", "", "b", 40)
			So(errors.Is(err, leaderboard.ErrWriteFailed), ShouldBeTrue)
			So(errors.Is(err, errDisk), ShouldBeTrue)
			So(snap.Count, ShouldEqual, 2)
			So(snap.Rank, ShouldEqual, 2)
			So(snap.TopScore, ShouldEqual, 40)
		})

		Convey("Reads degrade to an empty dataset", func() {
			entries, total, err := board.Top(ctx, "1102", "", 10)
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 0)
			So(entries, ShouldBeEmpty)
		})
	})

	Convey("Given a repository that never answers", t, func() {
		board := leaderboard.New(slowRepo{}, leaderboard.WithTimeout(20*time.Millisecond))

		Convey("Submit gives up after the timeout", func() {
			start := time.Now()
			snap, err := board.Submit(context.Background(), "1102", "", "a", 10)
			So(errors.Is(err, leaderboard.ErrWriteFailed), ShouldBeTrue)
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			So(time.Since(start), ShouldBeLessThan, time.Second)
			So(snap.Rank, ShouldEqual, 1)
			So(snap.Count, ShouldEqual, 1)
		})
	})
}
