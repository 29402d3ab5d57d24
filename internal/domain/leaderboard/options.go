package leaderboard

import (
	"time"

	"github.com/okian/buildcard/pkg/logger"
)

// Option applies a configuration option to the Board.
type Option func(*Board)

// WithLogger sets the board logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Board) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithTimeout bounds every repository call.
func WithTimeout(d time.Duration) Option {
	return func(b *Board) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithBackendName sets the backend label used in metrics.
func WithBackendName(name string) Option {
	return func(b *Board) {
		if name != "" {
			b.backend = name
		}
	}
}
