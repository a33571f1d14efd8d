// Package config defines engine configuration and its loading hooks.
//
// Conventions follow the rest of the codebase: defaults come from New(),
// Load() layers an optional YAML file and environment variables on top,
// and validation happens once at the end of loading.
package config

import "runtime"

// TierEntry is one configurable tournament tier row.
type TierEntry struct {
	Weight     float64 `koanf:"weight"`
	Importance float64 `koanf:"importance"`
}

// Config contains process configuration for a replay run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr is the Prometheus listen address, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// DatabaseURL is the Postgres DSN for the match log and rating store.
	DatabaseURL string `koanf:"database_url"`

	// InitialRating seeds Elo, Glicko-2, and TSR point estimates.
	InitialRating float64 `koanf:"initial_rating"`

	// BaseKFactor is the Elo K before tier weighting.
	BaseKFactor float64 `koanf:"base_k_factor"`

	// InitialRD and InitialVolatility seed Glicko-2 state.
	InitialRD         float64 `koanf:"initial_rd"`
	InitialVolatility float64 `koanf:"initial_volatility"`

	// EliteEloThreshold qualifies opponents for the Big-Match Rating.
	EliteEloThreshold float64 `koanf:"elite_elo_threshold"`

	// Rolling window sizes, in matches.
	FormWindow              int `koanf:"form_window"`
	BigMatchWindow          int `koanf:"big_match_window"`
	TournamentSuccessWindow int `koanf:"tournament_success_window"`

	// FinalizeWorkers bounds the per-player smooth-and-commit pool.
	FinalizeWorkers int `koanf:"finalize_workers"`

	// RunID resumes a previous replay at player boundaries when set.
	RunID string `koanf:"run_id"`

	// Leaderboard size logged after a completed replay.
	SummaryTopN int `koanf:"summary_top_n"`

	// TierOverrides adds to or overrides the built-in tier table.
	TierOverrides map[string]TierEntry `koanf:"tier_overrides"`
}

// New returns a Config carrying the standard engine constants.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		MetricsAddr:             ":9090",
		DatabaseURL:             "",
		InitialRating:           1500,
		BaseKFactor:             32,
		InitialRD:               350,
		InitialVolatility:       0.06,
		EliteEloThreshold:       2400,
		FormWindow:              20,
		BigMatchWindow:          50,
		TournamentSuccessWindow: 20,
		FinalizeWorkers:         runtime.NumCPU(),
		SummaryTopN:             10,
	}
}
