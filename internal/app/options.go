package service

import (
	"time"

	"github.com/okian/buildcard/internal/adapters/provider"
	"github.com/okian/buildcard/internal/domain/buildcache"
	"github.com/okian/buildcard/internal/domain/rolls"
	"github.com/okian/buildcard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProvider enables card requests against a build provider.
func WithProvider(f Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// WithBuildCache replaces the provider response cache.
func WithBuildCache(c *buildcache.Cache[*provider.PlayerInfo]) Option {
	return func(s *Service) {
		if c != nil {
			s.builds = c
		}
	}
}

// WithReconstructor replaces the roll reconstructor.
func WithReconstructor(r *rolls.Reconstructor) Option {
	return func(s *Service) {
		if r != nil {
			s.rolls = r
		}
	}
}

// WithSlotRemap maps item ids to the id that encodes their slot before the
// main-affix bucket is chosen.
func WithSlotRemap(remap map[string]string) Option {
	return func(s *Service) {
		s.slotRemap = remap
	}
}

// WithProfileWatch reloads weighting profiles when their file changes.
func WithProfileWatch(enabled bool) Option {
	return func(s *Service) {
		s.watchProfiles = enabled
	}
}

// WithPurgeInterval sets how often expired cache entries are dropped.
func WithPurgeInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.purgeInterval = d
		}
	}
}

// WithMaxLeaderboardLimit caps leaderboard page sizes.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithBackendName labels the leaderboard backend in stats.
func WithBackendName(name string) Option {
	return func(s *Service) {
		s.backend = name
	}
}

// WithStoreTimeout bounds every leaderboard storage call.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}
