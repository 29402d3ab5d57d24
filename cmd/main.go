package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/okian/buildcard/internal/adapters/http/api"
	"github.com/okian/buildcard/internal/adapters/provider"
	"github.com/okian/buildcard/internal/adapters/repository"
	app "github.com/okian/buildcard/internal/app"
	"github.com/okian/buildcard/internal/config"
	"github.com/okian/buildcard/internal/domain/buildcache"
	"github.com/okian/buildcard/internal/domain/profile"
	"github.com/okian/buildcard/internal/domain/scoring"
	"github.com/okian/buildcard/pkg/logger"
	"github.com/okian/buildcard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	cachePurgeInterval        = time.Minute
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	repo, err := openRepository(cfg, log)
	if err != nil {
		return err
	}

	svc, err := newService(cfg, repo, log)
	if err != nil {
		_ = repo.Close()
		return err
	}
	if err := svc.Start(ctx); err != nil {
		_ = repo.Close()
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("backend", repo.Backend()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	log.Info(ctx, "server stopped")
	return err
}

// openRepository opens the configured leaderboard backend.
func openRepository(cfg *config.Config, log logger.Logger) (repository.Store, error) {
	opts := []repository.Option{repository.WithLogger(log.Named("repository"))}
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		return repository.NewSQLiteStore(cfg.SQLitePath, opts...)
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		return repository.NewRedisStore(client, opts...), nil
	default:
		return repository.NewFileStore(cfg.StoreDir, opts...)
	}
}

func newService(cfg *config.Config, repo repository.Store, log logger.Logger) (*app.Service, error) {
	var remap map[string]string
	if cfg.SlotRemapPath != "" {
		var err error
		if remap, err = scoring.LoadSlotRemap(cfg.SlotRemapPath); err != nil {
			return nil, err
		}
		log.Info(context.Background(), "slot remap loaded",
			logger.String("path", cfg.SlotRemapPath), logger.Int("entries", len(remap)))
	}

	profiles := profile.NewStore(cfg.ProfilesPath, profile.WithLogger(log.Named("profiles")))
	fetcher := provider.New(cfg.ProviderURL,
		provider.WithTimeout(cfg.ProviderTimeout()),
		provider.WithLogger(log.Named("provider")),
	)
	cache := buildcache.New[*provider.PlayerInfo](
		buildcache.WithTTL(cfg.CacheTTL()),
		buildcache.WithMaxSize(cfg.CacheSize),
	)
	return app.New(profiles, repo,
		app.WithLogger(log.Named("service")),
		app.WithSlotRemap(remap),
		app.WithProvider(fetcher),
		app.WithBuildCache(cache),
		app.WithProfileWatch(cfg.WatchProfiles),
		app.WithPurgeInterval(cachePurgeInterval),
		app.WithStoreTimeout(cfg.StoreTimeout()),
		app.WithBackendName(repo.Backend()),
		app.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
	), nil
}

func newHandler(cfg *config.Config, svc *app.Service, log logger.Logger) http.Handler {
	return api.NewServer(svc,
		api.WithLogger(log.Named("http")),
		api.WithCORS(cfg.CORSOrigins, cfg.CORSRootOrigins),
	).Routes()
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
