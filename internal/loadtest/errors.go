package loadtest

import "errors"

// Sentinel kinds for load test errors.
var (
	ErrConfig       = errors.New("invalid load test config")
	ErrUnhealthy    = errors.New("service health check failed")
	ErrVerification = errors.New("leaderboard verification failed")
)
