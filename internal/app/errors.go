package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoProvider     = errors.New("no build provider configured")
	ErrCharacterIndex = errors.New("character index out of range")
)
