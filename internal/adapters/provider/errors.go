package provider

import "errors"

// Sentinel kinds for provider errors.
var (
	ErrNotFound    = errors.New("player not found at provider")
	ErrUnavailable = errors.New("build provider unavailable")
	ErrDecode      = errors.New("malformed provider response")
	ErrInvalidUID  = errors.New("invalid player uid")
)
