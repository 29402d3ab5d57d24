package api

import "github.com/okian/buildcard/pkg/logger"

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCORS allows GET requests from origins and every method from
// rootOrigins.
func WithCORS(origins, rootOrigins []string) Option {
	return func(s *Server) {
		s.origins = origins
		s.rootOrigins = rootOrigins
	}
}

// WithMaxBodyBytes limits request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}
