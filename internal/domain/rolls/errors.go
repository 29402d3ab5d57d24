package rolls

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is the parent of every input rejection of this package.
var ErrMalformedInput = errors.New("malformed roll input")

// Sentinel kinds; all of them satisfy errors.Is(err, ErrMalformedInput).
var (
	ErrInvalidRarity = fmt.Errorf("%w: rarity out of range", ErrMalformedInput)
	ErrNegativeValue = fmt.Errorf("%w: value must be a non-negative number", ErrMalformedInput)
	ErrUnknownKind   = fmt.Errorf("%w: no roll magnitudes for affix kind", ErrMalformedInput)
	ErrInvalidTable  = errors.New("invalid roll magnitude table")
)
