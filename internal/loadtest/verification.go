package loadtest

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/okian/buildcard/pkg/logger"
)

// tolerance absorbs the one-decimal rounding of the X-score header.
const tolerance = 0.05

// verify checks that each player's stored best equals the highest score
// the run saw persisted for them.
func verify(ctx context.Context, c *client, cfg Config, best map[string]float64, stats *Stats) error {
	log := cfg.Logger
	var verified, mismatched atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for player, want := range best {
		g.Go(func() error {
			snap, err := c.rank(gctx, cfg.CharacterID, cfg.Variant, player)
			if err != nil {
				mismatched.Add(1)
				log.Warn(gctx, "player missing from leaderboard", logger.String("player", player), logger.Error(err))
				return nil
			}
			if math.Abs(snap.Score-want) > tolerance {
				mismatched.Add(1)
				log.Warn(gctx, "stored best differs from submissions",
					logger.String("player", player),
					logger.Float64("stored", snap.Score),
					logger.Float64("submitted", want),
				)
				return nil
			}
			verified.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	stats.Verified = int(verified.Load())
	stats.Mismatched = int(mismatched.Load())
	if stats.Mismatched > 0 {
		return fmt.Errorf("%w: %d of %d players", ErrVerification, stats.Mismatched, len(best))
	}
	return nil
}
