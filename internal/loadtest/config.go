// Package loadtest drives concurrent build submissions against a running
// service and verifies that every player's stored best is the maximum they
// submitted.
package loadtest

import (
	"fmt"
	"time"

	"github.com/okian/buildcard/pkg/logger"
)

// Config holds configuration for a load test run.
type Config struct {
	BaseURL     string        // Base URL of the service
	CharacterID string        // Leaderboard character id
	Variant     string        // Weighting variant
	Players     int           // Distinct players per run
	Rounds      int           // Submissions per player
	Workers     int           // Concurrent requests
	Timeout     time.Duration // HTTP request timeout
	Seed        uint64        // Build generator seed; 0 picks one
	Logger      logger.Logger // Run progress and report; discarded when nil
}

// Stats holds run statistics.
type Stats struct {
	RunID      string
	Submitted  int
	Successful int
	Failed     int
	Unstored   int
	Verified   int
	Mismatched int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

func (c *Config) validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url must not be empty", ErrConfig)
	case c.CharacterID == "":
		return fmt.Errorf("%w: character id must not be empty", ErrConfig)
	case c.Players <= 0 || c.Rounds <= 0 || c.Workers <= 0:
		return fmt.Errorf("%w: players, rounds and workers must be positive", ErrConfig)
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	return nil
}
