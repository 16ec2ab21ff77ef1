package config

import "errors"

// Errors returned by Load and Validate; match them with errors.Is.
var (
	// ErrInvalidConfig marks a loaded setting that fails validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a config file or environment that cannot be read or decoded.
	ErrLoadConfig = errors.New("load config failed")
)
