// Package service wires the scoring, weighting and leaderboard components
// into the operations served over HTTP and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/buildcard/internal/adapters/provider"
	"github.com/okian/buildcard/internal/domain/buildcache"
	"github.com/okian/buildcard/internal/domain/leaderboard"
	"github.com/okian/buildcard/internal/domain/model"
	"github.com/okian/buildcard/internal/domain/profile"
	"github.com/okian/buildcard/internal/domain/rolls"
	"github.com/okian/buildcard/internal/domain/scoring"
	"github.com/okian/buildcard/internal/domain/tier"
	"github.com/okian/buildcard/pkg/logger"
	"github.com/okian/buildcard/pkg/metrics"
)

const (
	defaultPurgeInterval = 30 * time.Second
	defaultMaxLimit      = 100
	defaultStoreTimeout  = 2 * time.Second
)

// Fetcher loads the showcased builds of a player.
type Fetcher interface {
	Fetch(ctx context.Context, uid, lang string) (*provider.PlayerInfo, error)
}

// Evaluation is a scored and submitted build. Snapshot is nil when the
// build was not submitted; Persisted is false when the submission could not
// be stored.
type Evaluation struct {
	Build      model.Build      `json:"build"`
	Score      model.BuildScore `json:"score"`
	Snapshot   *model.Snapshot  `json:"snapshot,omitempty"`
	Scored     bool             `json:"scored"`
	Persisted  bool             `json:"persisted"`
	RollErrors []string         `json:"roll_errors,omitempty"`
}

// Card is one character of a fetched player with its evaluation.
type Card struct {
	Player provider.Player `json:"player"`
	Index  int             `json:"select_number"`
	Evaluation
}

// Service implements the API dependencies of the build card service.
type Service struct {
	mu sync.RWMutex

	// Core components
	profiles *profile.Store
	repo     leaderboard.Repository
	board    *leaderboard.Board
	scorer   *scoring.Scorer
	rolls    *rolls.Reconstructor
	builds   *buildcache.Cache[*provider.PlayerInfo]
	fetcher  Fetcher

	// Configuration
	slotRemap     map[string]string
	watchProfiles bool
	purgeInterval time.Duration
	maxLimit      int
	storeTimeout  time.Duration
	backend       string

	// State
	started bool
	cancel  context.CancelFunc
	group   *errgroup.Group

	logger logger.Logger
}

// New constructs a Service over a weighting profile store and a leaderboard
// repository.
func New(profiles *profile.Store, repo leaderboard.Repository, opts ...Option) *Service {
	s := &Service{
		profiles:      profiles,
		repo:          repo,
		purgeInterval: defaultPurgeInterval,
		maxLimit:      defaultMaxLimit,
		storeTimeout:  defaultStoreTimeout,
		backend:       "unknown",
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.rolls == nil {
		s.rolls = rolls.New()
	}
	if s.builds == nil {
		s.builds = buildcache.New[*provider.PlayerInfo]()
	}
	s.scorer = scoring.New(profiles,
		scoring.WithLogger(s.logger.Named("scoring")),
		scoring.WithSlotRemap(s.slotRemap),
	)
	s.board = leaderboard.New(repo,
		leaderboard.WithLogger(s.logger.Named("leaderboard")),
		leaderboard.WithTimeout(s.storeTimeout),
		leaderboard.WithBackendName(s.backend),
	)
	return s
}

// Start loads the weighting profiles and launches the background loops.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting build card service...")

	if err := s.profiles.Load(ctx); err != nil {
		return fmt.Errorf("load weighting profiles: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	g, gctx := errgroup.WithContext(runCtx)
	if s.watchProfiles {
		g.Go(func() error { return s.profiles.Watch(gctx) })
	}
	g.Go(func() error {
		s.purgeLoop(gctx)
		return nil
	})

	s.cancel = cancel
	s.group = g
	s.started = true
	s.logger.Info(ctx, "build card service started",
		logger.Int("profiles", s.profiles.Count()),
		logger.String("backend", s.backend),
		logger.Bool("watch", s.watchProfiles),
	)
	return nil
}

// Stop cancels the background loops and closes the repository.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping build card service...")

	s.cancel()
	if err := s.group.Wait(); err != nil {
		s.logger.Warn(ctx, "background loop exited with error", logger.Error(err))
	}

	if closer, ok := s.repo.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn(ctx, "closing leaderboard repository failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "build card service stopped")
}

func (s *Service) purgeLoop(ctx context.Context) {
	ticker := time.NewTicker(s.purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.builds.Purge(); n > 0 {
				s.logger.Debug(ctx, "purged expired builds", logger.Int("count", n))
			}
		}
	}
}

// GetWeightingProfile resolves the profile for a character and variant,
// falling back to the base id of alternate costumes.
func (s *Service) GetWeightingProfile(characterID, variant string) (profile.Profile, bool) {
	return s.profiles.Lookup(characterID, variant)
}

// WeightingProfile returns the profile stored under key, or an empty
// profile when there is none.
func (s *Service) WeightingProfile(key string) profile.Profile {
	if p, ok := s.profiles.Get(key); ok {
		return p
	}
	return profile.Empty()
}

// PutWeightingProfile stores p under key and persists the dataset.
func (s *Service) PutWeightingProfile(ctx context.Context, key string, p profile.Profile) error {
	return s.profiles.Put(ctx, key, p)
}

// ListWeightingProfiles returns every profile whose key starts with prefix.
func (s *Service) ListWeightingProfiles(prefix string) map[string]profile.Profile {
	return s.profiles.List(prefix)
}

// ReconstructRoll explains value as low, mid and high upgrade rolls.
func (s *Service) ReconstructRoll(rarity int, kind model.AffixKind, value float64) (model.RollComposition, error) {
	return s.rolls.Reconstruct(rarity, kind, value)
}

// ScoreItem scores one item against the character's weighting profile.
func (s *Service) ScoreItem(characterID string, item model.Item, variant string) model.ItemScore {
	return s.scorer.ScoreItem(characterID, item, variant)
}

// ScoreItemSet scores the active set bonuses of a build.
func (s *Service) ScoreItemSet(characterID string, sets []model.SetCount, variant string) model.SetScore {
	return s.scorer.ScoreItemSet(characterID, sets, variant)
}

// ClassifyItemTier labels a single item percent score.
func (s *Service) ClassifyItemTier(score float64) string { return tier.ClassifyItem(score) }

// ClassifyBuildTier labels the summed item score of a build.
func (s *Service) ClassifyBuildTier(score float64) string { return tier.ClassifyBuild(score) }

// SubmitScore records score for playerID and returns the player's position.
func (s *Service) SubmitScore(ctx context.Context, characterID, variant, playerID string, score float64) (model.Snapshot, error) {
	return s.board.Submit(ctx, characterID, variant, playerID, score)
}

// PlayerStats returns the position of playerID without submitting.
func (s *Service) PlayerStats(ctx context.Context, characterID, variant, playerID string) (model.Snapshot, error) {
	return s.board.Stats(ctx, characterID, variant, playerID)
}

// LeaderboardTop returns up to limit entries and the number of players.
// Non-positive or oversized limits are clamped to the configured maximum.
func (s *Service) LeaderboardTop(ctx context.Context, characterID, variant string, limit int) ([]model.Entry, int, error) {
	if limit <= 0 || limit > s.maxLimit {
		limit = s.maxLimit
	}
	return s.board.Top(ctx, characterID, variant, limit)
}

// EvaluateBuild reconstructs the rolls of every affix, scores the build and
// submits its total for playerID. The no_score variant skips scoring and
// submission. A failed write is reported through Persisted, not the error.
func (s *Service) EvaluateBuild(ctx context.Context, playerID string, build model.Build, variant string) (Evaluation, error) {
	build, rollErrs := s.annotate(ctx, build)
	ev := Evaluation{Build: build, RollErrors: rollErrs}

	if variant == model.VariantNoScore {
		ev.Score = model.BuildScore{CharacterID: build.CharacterID, Variant: variant}
		return ev, nil
	}

	ev.Score = s.scorer.ScoreBuild(build.CharacterID, build.Items, build.Sets, variant)
	ev.Scored = true

	snap, err := s.board.Submit(ctx, build.CharacterID, variant, playerID, ev.Score.Total)
	switch {
	case err == nil:
		ev.Persisted = true
	case errors.Is(err, leaderboard.ErrWriteFailed):
		s.logger.Error(ctx, "build score not persisted",
			logger.String("character", build.CharacterID),
			logger.String("player", playerID),
			logger.Error(err),
		)
	default:
		return ev, err
	}
	ev.Snapshot = &snap
	return ev, nil
}

// annotate returns a copy of build whose affixes carry reconstructed rolls,
// plus one message per affix that could not be reconstructed.
func (s *Service) annotate(ctx context.Context, build model.Build) (model.Build, []string) {
	var msgs []string
	items := make([]model.Item, len(build.Items))
	for i, item := range build.Items {
		item.Subs = append([]model.SecondaryAffix(nil), item.Subs...)
		for _, err := range s.rolls.Annotate(&item) {
			metrics.RecordScoringError("roll")
			s.logger.Debug(ctx, "roll reconstruction failed",
				logger.String("item", item.ID), logger.Error(err))
			msgs = append(msgs, err.Error())
		}
		items[i] = item
	}
	build.Items = items
	return build, msgs
}

// Card fetches the builds of uid (cached per language), picks the character
// at index and evaluates it with uid as the player.
func (s *Service) Card(ctx context.Context, uid string, index int, variant, lang string) (*Card, error) {
	if s.fetcher == nil {
		return nil, ErrNoProvider
	}

	info, err := s.builds.GetOrFetch(ctx, uid+"|"+lang, func(ctx context.Context) (*provider.PlayerInfo, error) {
		return s.fetcher.Fetch(ctx, uid, lang)
	})
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(info.Characters) {
		return nil, fmt.Errorf("%w: %d of %d", ErrCharacterIndex, index, len(info.Characters))
	}

	ev, err := s.EvaluateBuild(ctx, uid, info.Characters[index], variant)
	if err != nil {
		return nil, err
	}
	return &Card{Player: info.Player, Index: index, Evaluation: ev}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"backend":     s.backend,
		"profiles":    s.profiles.Count(),
		"profileFile": s.profiles.Path(),
		"cachedUsers": s.builds.Len(),
		"watching":    s.watchProfiles,
		"maxLimit":    s.maxLimit,
		"slotRemaps":  len(s.slotRemap),
	}
	metrics.UpdateProfilesLoaded(s.profiles.Count())
	metrics.UpdateCacheEntries(s.builds.Len())
	return stats
}
