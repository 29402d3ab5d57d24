// Package leaderboard keeps each player's best score per character and
// derives rank, percentile, median and mean from the stored scores.
package leaderboard

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/okian/buildcard/internal/domain/model"
	"github.com/okian/buildcard/pkg/logger"
	"github.com/okian/buildcard/pkg/metrics"
)

const defaultTimeout = 2 * time.Second

// Repository persists per-key best scores. UpsertBest must serialize
// concurrent calls for the same key and store max(previous, score). Returned
// maps belong to the caller. On a write failure UpsertBest should still
// return whatever it read.
type Repository interface {
	UpsertBest(ctx context.Context, key, playerID string, score float64) (model.BestUpdate, error)
	Scores(ctx context.Context, key string) (map[string]float64, error)
}

// Board is the leaderboard service over a Repository.
type Board struct {
	repo    Repository
	timeout time.Duration
	backend string
	logger  logger.Logger
}

// New creates a Board.
func New(repo Repository, opts ...Option) *Board {
	b := &Board{
		repo:    repo,
		timeout: defaultTimeout,
		backend: "unknown",
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Submit records score for playerID under the character and variant key and
// returns the player's position over the updated dataset. If the write
// fails the snapshot is still returned together with an error wrapping
// ErrWriteFailed.
func (b *Board) Submit(ctx context.Context, characterID, variant, playerID string, score float64) (model.Snapshot, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return model.Snapshot{}, ErrInvalidPlayer
	}
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return model.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidScore, score)
	}
	key := model.ScopedID(characterID, variant)

	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	upd, err := b.repo.UpsertBest(callCtx, key, playerID, score)
	metrics.RecordLeaderboardUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)

	if err != nil {
		metrics.RecordStoreError(b.backend, "write")
		b.logger.Error(ctx, "leaderboard write failed",
			logger.String("key", key), logger.String("player", playerID), logger.Error(err))

		scores := upd.Scores
		if scores == nil {
			scores = map[string]float64{}
		}
		best := score
		if upd.Existed && upd.Previous > best {
			best = upd.Previous
		}
		if cur, ok := scores[playerID]; !ok || cur < best {
			scores[playerID] = best
		}
		return snapshot(key, playerID, scores, score, upd.Previous), fmt.Errorf("%w: %s: %w", ErrWriteFailed, key, err)
	}

	switch {
	case !upd.Existed:
		metrics.RecordSubmission(metrics.SubmissionNew)
	case score > upd.Previous:
		metrics.RecordSubmission(metrics.SubmissionImproved)
	default:
		metrics.RecordSubmission(metrics.SubmissionKept)
	}

	snap := snapshot(key, playerID, upd.Scores, score, upd.Previous)
	b.logger.Debug(ctx, "score submitted",
		logger.String("key", key), logger.String("player", playerID),
		logger.Float64("score", score), logger.Int("rank", snap.Rank), logger.Int("count", snap.Count))
	return snap, nil
}

// Stats returns the stored position of playerID without submitting.
func (b *Board) Stats(ctx context.Context, characterID, variant, playerID string) (model.Snapshot, error) {
	key := model.ScopedID(characterID, variant)
	scores := b.read(ctx, key)
	best, ok := scores[playerID]
	if !ok {
		return model.Snapshot{}, fmt.Errorf("%w: %s in %s", ErrPlayerNotFound, playerID, key)
	}
	return snapshot(key, playerID, scores, best, best), nil
}

// Top returns the best limit entries of a key and the total entry count.
func (b *Board) Top(ctx context.Context, characterID, variant string, limit int) ([]model.Entry, int, error) {
	if limit <= 0 {
		return nil, 0, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	entries := Entries(b.read(ctx, model.ScopedID(characterID, variant)))
	total := len(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, total, nil
}

// read treats an unreadable dataset as empty.
func (b *Board) read(ctx context.Context, key string) map[string]float64 {
	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	scores, err := b.repo.Scores(callCtx, key)
	if err != nil {
		metrics.RecordStoreError(b.backend, "read")
		b.logger.Warn(ctx, "leaderboard read failed, using empty dataset",
			logger.String("key", key), logger.Error(err))
		return map[string]float64{}
	}
	return scores
}
