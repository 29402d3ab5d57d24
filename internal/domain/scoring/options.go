package scoring

import "github.com/okian/buildcard/pkg/logger"

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithLogger sets the scorer logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSlotRemap maps item ids whose last digit does not encode the slot to
// an id that does. The map is copied.
func WithSlotRemap(remap map[string]string) Option {
	return func(s *Scorer) {
		s.slotRemap = make(map[string]string, len(remap))
		for k, v := range remap {
			s.slotRemap[k] = v
		}
	}
}
