package leaderboard

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrWriteFailed    = errors.New("leaderboard write failed")
	ErrPlayerNotFound = errors.New("player not on leaderboard")
	ErrInvalidPlayer  = errors.New("invalid player id")
	ErrInvalidScore   = errors.New("invalid score")
	ErrInvalidLimit   = errors.New("invalid leaderboard limit")
)
