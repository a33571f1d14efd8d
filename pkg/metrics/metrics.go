// Package metrics exposes Prometheus instrumentation for the replay engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "baseline"
	subsystem = "replay"
)

var (
	matchesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "matches_processed_total",
		Help:      "Matches consumed from the match stream.",
	})

	snapshotsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "snapshots_written_total",
		Help:      "Rating snapshots persisted to the store.",
	})

	playersFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "players_finalized_total",
		Help:      "Players whose full history was smoothed and committed.",
	})

	unknownTiers = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "unknown_tiers_total",
		Help:      "Matches carrying a tournament tier missing from the tier table.",
	})

	unknownSurfaces = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "unknown_surfaces_total",
		Help:      "Matches with an unrecognized surface defaulted to hard.",
	})

	trackedPlayers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "tracked_players",
		Help:      "Players with in-memory rating state in the active replay.",
	})

	flushDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "player_flush_duration_seconds",
		Help:      "Time to smooth and persist one player's full history.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	})

	replayDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of complete replay runs.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 16),
	})
)

// RecordMatchProcessed counts one consumed match.
func RecordMatchProcessed() { matchesProcessed.Inc() }

// RecordSnapshotsWritten counts persisted snapshots.
func RecordSnapshotsWritten(n int) { snapshotsWritten.Add(float64(n)) }

// RecordPlayerFinalized counts one fully committed player.
func RecordPlayerFinalized() { playersFinalized.Inc() }

// RecordUnknownTier counts a tier-table miss.
func RecordUnknownTier() { unknownTiers.Inc() }

// RecordUnknownSurface counts a surface defaulted to hard.
func RecordUnknownSurface() { unknownSurfaces.Inc() }

// UpdateTrackedPlayers sets the number of players with live state.
func UpdateTrackedPlayers(n int) { trackedPlayers.Set(float64(n)) }

// ObserveFlushDuration records one per-player flush.
func ObserveFlushDuration(d time.Duration) { flushDuration.Observe(d.Seconds()) }

// ObserveRunDuration records one full replay run.
func ObserveRunDuration(d time.Duration) { replayDuration.Observe(d.Seconds()) }
