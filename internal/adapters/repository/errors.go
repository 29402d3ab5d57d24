package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrInvalidKey = errors.New("invalid leaderboard key")
	ErrRead       = errors.New("leaderboard read failed")
	ErrWrite      = errors.New("leaderboard write failed")
	ErrConflict   = errors.New("leaderboard update kept conflicting")
)
