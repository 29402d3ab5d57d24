package profile

import "errors"

// Sentinel kinds for weighting profile errors.
var (
	ErrLoadProfiles    = errors.New("load weighting profiles")
	ErrPersistProfiles = errors.New("persist weighting profiles")
	ErrEmptyKey        = errors.New("empty weighting profile key")
	ErrWatch           = errors.New("watch weighting profiles")
)
