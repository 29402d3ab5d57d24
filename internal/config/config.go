// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns defaults; Load(ctx) layers file and environment on top.
// - External errors are wrapped with ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"time"
)

// Leaderboard storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ProfilesPath points at the weighting profile dataset (JSON).
	ProfilesPath string `koanf:"profiles_path"`

	// SlotRemapPath optionally points at a JSON table mapping item ids whose
	// last digit is not their slot to one that is.
	SlotRemapPath string `koanf:"slot_remap_path"`

	// WatchProfiles reloads the dataset when the file changes on disk.
	WatchProfiles bool `koanf:"watch_profiles"`

	// StoreBackend selects leaderboard persistence: file, sqlite or redis.
	StoreBackend string `koanf:"store_backend"`

	// StoreDir holds one JSON dataset per leaderboard key (file backend).
	StoreDir string `koanf:"store_dir"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `koanf:"sqlite_path"`

	// RedisAddr and RedisDB configure the redis backend.
	RedisAddr string `koanf:"redis_addr"`
	RedisDB   int    `koanf:"redis_db"`

	// StoreTimeoutMS bounds every leaderboard storage call.
	StoreTimeoutMS int `koanf:"store_timeout_ms"`

	// CORSOrigins may issue GET requests; CORSRootOrigins may use any method.
	CORSOrigins     []string `koanf:"cors_origins"`
	CORSRootOrigins []string `koanf:"cors_root_origins"`

	// ProviderURL is the base URL of the build data provider.
	ProviderURL       string `koanf:"provider_url"`
	ProviderTimeoutMS int    `koanf:"provider_timeout_ms"`

	// CacheTTLSeconds and CacheSize bound the provider build cache.
	CacheTTLSeconds int `koanf:"cache_ttl_s"`
	CacheSize       int `koanf:"cache_size"`

	// MaxLeaderboardLimit caps GET /leaderboard/{id}?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		ProfilesPath:        "data/score.json",
		WatchProfiles:       true,
		StoreBackend:        BackendFile,
		StoreDir:            "data/scores",
		SQLitePath:          "data/leaderboard.db",
		RedisAddr:           "localhost:6379",
		RedisDB:             0,
		StoreTimeoutMS:      2000,
		CORSOrigins:         []string{"http://localhost", "http://localhost:8080"},
		CORSRootOrigins:     nil,
		ProviderURL:         "https://api.mihomo.me",
		ProviderTimeoutMS:   3000,
		CacheTTLSeconds:     60,
		CacheSize:           10_000,
		MaxLeaderboardLimit: 100,
	}
}

// StoreTimeout returns StoreTimeoutMS as a duration.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutMS) * time.Millisecond
}

// ProviderTimeout returns ProviderTimeoutMS as a duration.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutMS) * time.Millisecond
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
