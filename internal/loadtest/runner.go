package loadtest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/buildcard/internal/domain/model"
	"github.com/okian/buildcard/pkg/logger"
)

const percentageMultiplier = 100

type job struct {
	player string
	build  model.Build
}

// Run submits cfg.Rounds builds for each of cfg.Players fresh players with
// cfg.Workers requests in flight, then checks every stored best.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	stats := &Stats{RunID: uuid.NewString()[:8], StartTime: time.Now()}

	log.Info(ctx, "starting load test",
		logger.String("run", stats.RunID),
		logger.String("baseURL", cfg.BaseURL),
		logger.String("character", cfg.CharacterID),
		logger.Int("players", cfg.Players),
		logger.Int("rounds", cfg.Rounds),
		logger.Int("workers", cfg.Workers),
	)

	c := newClient(cfg.BaseURL, cfg.Timeout)
	if err := c.health(ctx); err != nil {
		return stats, err
	}

	jobs := plan(cfg, stats.RunID)
	best, err := submit(ctx, c, cfg, jobs, stats)
	if err != nil {
		return stats, err
	}

	verifyErr := verify(ctx, c, cfg, best, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	report(ctx, log, stats)
	return stats, verifyErr
}

// plan interleaves rounds so submissions of one player race each other.
func plan(cfg Config, runID string) []job {
	gen := newGenerator(cfg.Seed)
	jobs := make([]job, 0, cfg.Players*cfg.Rounds)
	for round := 0; round < cfg.Rounds; round++ {
		for p := 0; p < cfg.Players; p++ {
			jobs = append(jobs, job{
				player: fmt.Sprintf("lt-%s-%04d", runID, p),
				build:  gen.build(cfg.CharacterID),
			})
		}
	}
	return jobs
}

// submit sends every job and returns the highest persisted score per player.
func submit(ctx context.Context, c *client, cfg Config, jobs []job, stats *Stats) (map[string]float64, error) {
	var (
		mu       sync.Mutex
		best     = make(map[string]float64, cfg.Players)
		ok       atomic.Int64
		failed   atomic.Int64
		unstored atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, j := range jobs {
		g.Go(func() error {
			res, err := c.score(gctx, j.player, j.build, cfg.Variant)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				return nil
			}
			ok.Add(1)
			if !res.Persisted {
				unstored.Add(1)
				return nil
			}
			mu.Lock()
			if cur, seen := best[j.player]; !seen || res.Score > cur {
				best[j.player] = res.Score
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("submission interrupted: %w", err)
	}

	stats.Submitted = len(jobs)
	stats.Successful = int(ok.Load())
	stats.Failed = int(failed.Load())
	stats.Unstored = int(unstored.Load())
	return best, nil
}

func report(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, perSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Successful) / float64(stats.Submitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.String("run", stats.RunID),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Int("unstored", stats.Unstored),
		logger.Int("verified", stats.Verified),
		logger.Int("mismatched", stats.Mismatched),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("submissionsPerSecond", perSecond),
	)
}
