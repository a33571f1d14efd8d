// Package repository defines the rating snapshot store interface and its
// in-memory and Postgres implementations.
package repository

import (
	"context"
	"time"

	"github.com/razaool/baseline/internal/domain/model"
)

// LeaderboardRow is the read-only "latest snapshot per player" view used by
// the serving layer and the post-replay summary.
type LeaderboardRow struct {
	PlayerID       int64
	Date           time.Time
	EloOverall     float64
	TSRRating      float64
	TSRUncertainty float64
}

// Store persists and retrieves rating snapshots. The engine writes each
// player's history exactly once per replay; the serving layer only reads.
type Store interface {
	// SavePlayerHistory writes one player's complete snapshot sequence in a
	// single transactional batch. Snapshots must be ordered by career match
	// number. A (player, date) duplicate is a hard integrity violation and
	// fails the write; a (player, match) re-write replaces the prior row.
	SavePlayerHistory(ctx context.Context, playerID int64, snapshots []model.RatingSnapshot) error

	// UpsertPlayer records or refreshes a player's identity metadata.
	UpsertPlayer(ctx context.Context, player model.Player) error

	// LatestSnapshot returns the most recent snapshot for a player.
	// Returns ErrNotFound if the player has no snapshots.
	LatestSnapshot(ctx context.Context, playerID int64) (model.RatingSnapshot, error)

	// SnapshotAsOf returns the last snapshot at or before the given date.
	// Returns ErrNotFound if none exists.
	SnapshotAsOf(ctx context.Context, playerID int64, asOf time.Time) (model.RatingSnapshot, error)

	// TopPlayers returns the n highest-rated players by latest overall Elo.
	TopPlayers(ctx context.Context, n int) ([]LeaderboardRow, error)

	// SaveCheckpoint marks a player as fully committed for a replay run.
	SaveCheckpoint(ctx context.Context, runID string, playerID int64) error

	// CommittedPlayers returns the players already committed for a run.
	CommittedPlayers(ctx context.Context, runID string) (map[int64]struct{}, error)
}
