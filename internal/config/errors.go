package config

import "errors"

// Validation errors.
var (
	ErrMissingMetricsAddr = errors.New("metrics_addr must not be empty")
	ErrInvalidConstants   = errors.New("rating constants must be positive")
	ErrInvalidWindows     = errors.New("rolling window sizes must be positive")
)
