package common

import "errors"

var (
	// ErrInvalidConfig reports a configuration value that cannot be used.
	ErrInvalidConfig = errors.New("invalid config")
)
