package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/razaool/baseline/internal/domain/model"
)

// MemoryStore is an in-memory Store used by tests and dry runs. It enforces
// the same integrity rules as the Postgres store: (player, date) uniqueness
// and gapless strictly increasing career match numbers.
type MemoryStore struct {
	mu          sync.RWMutex
	histories   map[int64][]model.RatingSnapshot
	players     map[int64]model.Player
	checkpoints map[string]map[int64]struct{}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		histories:   make(map[int64][]model.RatingSnapshot),
		players:     make(map[int64]model.Player),
		checkpoints: make(map[string]map[int64]struct{}),
	}
}

// SavePlayerHistory validates and stores one player's complete history,
// replacing any previously committed history for that player.
func (s *MemoryStore) SavePlayerHistory(_ context.Context, playerID int64, snapshots []model.RatingSnapshot) error {
	seenDates := make(map[time.Time]struct{}, len(snapshots))
	for i, snap := range snapshots {
		if snap.CareerMatchNumber != i+1 {
			return ErrUnorderedHistory
		}
		day := snap.Date.Truncate(24 * time.Hour)
		if _, dup := seenDates[day]; dup {
			return ErrDuplicateDate
		}
		seenDates[day] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]model.RatingSnapshot, len(snapshots))
	copy(history, snapshots)
	s.histories[playerID] = history
	return nil
}

// UpsertPlayer records or refreshes a player's identity metadata.
func (s *MemoryStore) UpsertPlayer(_ context.Context, player model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player
	return nil
}

// LatestSnapshot returns the most recent snapshot for a player.
func (s *MemoryStore) LatestSnapshot(_ context.Context, playerID int64) (model.RatingSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.histories[playerID]
	if len(history) == 0 {
		return model.RatingSnapshot{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// SnapshotAsOf returns the last snapshot at or before asOf.
func (s *MemoryStore) SnapshotAsOf(_ context.Context, playerID int64, asOf time.Time) (model.RatingSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.histories[playerID]
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].Date.After(asOf) {
			return history[i], nil
		}
	}
	return model.RatingSnapshot{}, ErrNotFound
}

// TopPlayers returns the n highest-rated players by latest overall Elo.
func (s *MemoryStore) TopPlayers(_ context.Context, n int) ([]LeaderboardRow, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]LeaderboardRow, 0, len(s.histories))
	for playerID, history := range s.histories {
		if len(history) == 0 {
			continue
		}
		latest := history[len(history)-1]
		rows = append(rows, LeaderboardRow{
			PlayerID:       playerID,
			Date:           latest.Date,
			EloOverall:     latest.EloOverall,
			TSRRating:      latest.TSRRating,
			TSRUncertainty: latest.TSRUncertainty,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].EloOverall != rows[j].EloOverall {
			return rows[i].EloOverall > rows[j].EloOverall
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

// SaveCheckpoint marks a player as fully committed for a run.
func (s *MemoryStore) SaveCheckpoint(_ context.Context, runID string, playerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	committed, ok := s.checkpoints[runID]
	if !ok {
		committed = make(map[int64]struct{})
		s.checkpoints[runID] = committed
	}
	committed[playerID] = struct{}{}
	return nil
}

// CommittedPlayers returns the players already committed for a run.
func (s *MemoryStore) CommittedPlayers(_ context.Context, runID string) (map[int64]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	committed := make(map[int64]struct{}, len(s.checkpoints[runID]))
	for playerID := range s.checkpoints[runID] {
		committed[playerID] = struct{}{}
	}
	return committed, nil
}
