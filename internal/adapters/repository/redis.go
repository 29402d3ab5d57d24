package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/okian/buildcard/internal/domain/model"
	"github.com/okian/buildcard/pkg/logger"
	"github.com/okian/buildcard/pkg/metrics"
)

// RedisStore keeps each leaderboard in a sorted set and updates it with
// optimistic WATCH/MULTI transactions.
type RedisStore struct {
	client redis.UniversalClient
	opts   options
}

// NewRedisStore wraps client. The store owns the client and closes it.
func NewRedisStore(client redis.UniversalClient, opts ...Option) *RedisStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisStore{client: client, opts: o}
}

// Backend returns BackendRedis.
func (s *RedisStore) Backend() string { return BackendRedis }

// Close closes the client.
func (s *RedisStore) Close() error { return s.client.Close() }

// UpsertBest implements leaderboard.Repository. A transaction that loses a
// race is retried up to the configured limit.
func (s *RedisStore) UpsertBest(ctx context.Context, key, playerID string, score float64) (model.BestUpdate, error) {
	if err := validateKey(key); err != nil {
		return model.BestUpdate{}, err
	}
	rkey := s.opts.prefix + key

	var upd model.BestUpdate
	txf := func(tx *redis.Tx) error {
		scores, err := readSortedSet(ctx, tx, rkey)
		unread := err != nil
		if unread {
			metrics.RecordStoreError(BackendRedis, "read")
			s.opts.logger.Warn(ctx, "unreadable leaderboard, treating as empty",
				logger.String("key", key), logger.Error(err))
			scores = map[string]float64{}
		}
		upd = applyBest(scores, playerID, score)
		if upd.Existed && score <= upd.Previous {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			member := redis.Z{Score: score, Member: playerID}
			if unread {
				// GT keeps a stored best we could not see.
				pipe.ZAddGT(ctx, rkey, member)
			} else {
				pipe.ZAdd(ctx, rkey, member)
			}
			return nil
		})
		if err != nil && !errors.Is(err, redis.TxFailedErr) {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
		return err
	}

	for attempt := 0; attempt < s.opts.maxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, rkey)
		switch {
		case err == nil:
			return upd, nil
		case errors.Is(err, redis.TxFailedErr):
			s.opts.logger.Debug(ctx, "leaderboard transaction conflict, retrying",
				logger.String("key", key), logger.Int("attempt", attempt+1))
			continue
		case errors.Is(err, ErrWrite):
			return upd, err
		default:
			return model.BestUpdate{}, fmt.Errorf("%w: watch: %w", ErrRead, err)
		}
	}
	return upd, fmt.Errorf("%w: %s after %d attempts", ErrConflict, key, s.opts.maxRetries)
}

// Scores implements leaderboard.Repository.
func (s *RedisStore) Scores(ctx context.Context, key string) (map[string]float64, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	return readSortedSet(ctx, s.client, s.opts.prefix+key)
}

func readSortedSet(ctx context.Context, c redis.Cmdable, rkey string) (map[string]float64, error) {
	zs, err := c.ZRangeWithScores(ctx, rkey, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	scores := make(map[string]float64, len(zs)+1)
	for _, z := range zs {
		if member, ok := z.Member.(string); ok {
			scores[member] = z.Score
		}
	}
	return scores, nil
}
