package repository

import "github.com/okian/buildcard/pkg/logger"

type options struct {
	logger     logger.Logger
	maxRetries int
	prefix     string
}

func defaultOptions() options {
	return options{
		logger:     logger.Nop(),
		maxRetries: 16,
		prefix:     "buildcard:leaderboard:",
	}
}

// Option applies a configuration option to a store.
type Option func(*options)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxRetries bounds optimistic transaction retries (Redis only).
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRetries = n
		}
	}
}

// WithKeyPrefix sets the key namespace (Redis only).
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}
