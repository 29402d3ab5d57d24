package buildcache

import "time"

// Option applies a configuration option to the Cache.
type Option func(*config)

type config struct {
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

// WithTTL sets how long an entry stays fresh.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxSize bounds the number of entries. When full, the oldest entry is
// evicted. maxSize <= 0 means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(c *config) {
		c.maxSize = maxSize
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}
