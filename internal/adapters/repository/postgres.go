package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/razaool/baseline/internal/domain/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// uniqueViolation is the Postgres SQLSTATE for unique constraint errors.
const uniqueViolation = "23505"

const snapshotColumns = `
	player_id, match_id, date, career_match_number,
	elo_rating, elo_clay, elo_grass, elo_hard,
	glicko2_rating, glicko2_rd, glicko2_volatility,
	glicko2_clay_rating, glicko2_clay_rd, glicko2_clay_volatility,
	glicko2_grass_rating, glicko2_grass_rd, glicko2_grass_volatility,
	glicko2_hard_rating, glicko2_hard_rd, glicko2_hard_volatility,
	tsr_rating, tsr_uncertainty, clay_uncertainty, grass_uncertainty, hard_uncertainty,
	tsr_smoothed, form_index, big_match_rating, tournament_success_score`

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool. The caller owns the
// pool's lifecycle.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate applies the embedded schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, string(schema)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// SavePlayerHistory replaces one player's snapshot rows inside a single
// transaction, writing in one batched round-trip rather than row-by-row.
// The unique (player_id, date) constraint turns duplicate dates into a
// hard failure instead of silently accumulated rows.
func (s *PostgresStore) SavePlayerHistory(ctx context.Context, playerID int64, snapshots []model.RatingSnapshot) error {
	for i, snap := range snapshots {
		if snap.CareerMatchNumber != i+1 {
			return ErrUnorderedHistory
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM player_ratings WHERE player_id = $1`, playerID); err != nil {
		return fmt.Errorf("clear prior history for player %d: %w", playerID, err)
	}

	batch := &pgx.Batch{}
	insert := fmt.Sprintf(`INSERT INTO player_ratings (%s)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29)`,
		snapshotColumns)
	for _, snap := range snapshots {
		batch.Queue(insert,
			snap.PlayerID, snap.MatchID, snap.Date, snap.CareerMatchNumber,
			snap.EloOverall, snap.EloClay, snap.EloGrass, snap.EloHard,
			snap.Glicko2Rating, snap.Glicko2RD, snap.Glicko2Volatility,
			snap.Glicko2ClayRating, snap.Glicko2ClayRD, snap.Glicko2ClayVolatility,
			snap.Glicko2GrassRating, snap.Glicko2GrassRD, snap.Glicko2GrassVolatility,
			snap.Glicko2HardRating, snap.Glicko2HardRD, snap.Glicko2HardVolatility,
			snap.TSRRating, snap.TSRUncertainty, snap.TSRClayUncertainty,
			snap.TSRGrassUncertainty, snap.TSRHardUncertainty,
			snap.TSRSmoothed, snap.FormIndex, snap.BigMatchRating, snap.TournamentSuccessScore,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("player %d: %w", playerID, ErrDuplicateDate)
		}
		return fmt.Errorf("insert history for player %d: %w", playerID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit history for player %d: %w", playerID, err)
	}
	return nil
}

// UpsertPlayer records or refreshes a player's identity metadata.
func (s *PostgresStore) UpsertPlayer(ctx context.Context, player model.Player) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO players (player_id, name, country, birth_date, pro_debut_year)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id) DO UPDATE
		   SET name = EXCLUDED.name,
		       country = EXCLUDED.country,
		       birth_date = EXCLUDED.birth_date,
		       pro_debut_year = EXCLUDED.pro_debut_year
	`, player.ID, player.Name, player.Country, player.BirthDate, player.ProDebutYear)
	if err != nil {
		return fmt.Errorf("upsert player %d: %w", player.ID, err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot for a player.
func (s *PostgresStore) LatestSnapshot(ctx context.Context, playerID int64) (model.RatingSnapshot, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM player_ratings
		 WHERE player_id = $1
		 ORDER BY career_match_number DESC
		 LIMIT 1`, snapshotColumns), playerID)
	return scanSnapshot(row)
}

// SnapshotAsOf returns the last snapshot at or before asOf.
func (s *PostgresStore) SnapshotAsOf(ctx context.Context, playerID int64, asOf time.Time) (model.RatingSnapshot, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM player_ratings
		 WHERE player_id = $1 AND date <= $2
		 ORDER BY career_match_number DESC
		 LIMIT 1`, snapshotColumns), playerID, asOf)
	return scanSnapshot(row)
}

// TopPlayers returns the n highest-rated players by latest overall Elo.
func (s *PostgresStore) TopPlayers(ctx context.Context, n int) ([]LeaderboardRow, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (player_id)
		       player_id, date, elo_rating, tsr_rating, tsr_uncertainty
		  FROM player_ratings
		 ORDER BY player_id, career_match_number DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var all []LeaderboardRow
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.PlayerID, &r.Date, &r.EloOverall, &r.TSRRating, &r.TSRUncertainty); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Sort by Elo in-process: DISTINCT ON forces the player_id ordering.
	sort.Slice(all, func(i, j int) bool { return all[i].EloOverall > all[j].EloOverall })
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// SaveCheckpoint marks a player as fully committed for a run.
func (s *PostgresStore) SaveCheckpoint(ctx context.Context, runID string, playerID int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO replay_checkpoints (run_id, player_id)
		VALUES ($1, $2)
		ON CONFLICT (run_id, player_id) DO NOTHING
	`, runID, playerID)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// CommittedPlayers returns the players already committed for a run.
func (s *PostgresStore) CommittedPlayers(ctx context.Context, runID string) (map[int64]struct{}, error) {
	rows, err := s.pool.Query(ctx, `SELECT player_id FROM replay_checkpoints WHERE run_id = $1`, runID)
	if err != nil {
		return nil, fmt.Errorf("query checkpoints: %w", err)
	}
	defer rows.Close()

	committed := make(map[int64]struct{})
	for rows.Next() {
		var playerID int64
		if err := rows.Scan(&playerID); err != nil {
			return nil, err
		}
		committed[playerID] = struct{}{}
	}
	return committed, rows.Err()
}

func scanSnapshot(row pgx.Row) (model.RatingSnapshot, error) {
	var snap model.RatingSnapshot
	err := row.Scan(
		&snap.PlayerID, &snap.MatchID, &snap.Date, &snap.CareerMatchNumber,
		&snap.EloOverall, &snap.EloClay, &snap.EloGrass, &snap.EloHard,
		&snap.Glicko2Rating, &snap.Glicko2RD, &snap.Glicko2Volatility,
		&snap.Glicko2ClayRating, &snap.Glicko2ClayRD, &snap.Glicko2ClayVolatility,
		&snap.Glicko2GrassRating, &snap.Glicko2GrassRD, &snap.Glicko2GrassVolatility,
		&snap.Glicko2HardRating, &snap.Glicko2HardRD, &snap.Glicko2HardVolatility,
		&snap.TSRRating, &snap.TSRUncertainty, &snap.TSRClayUncertainty,
		&snap.TSRGrassUncertainty, &snap.TSRHardUncertainty,
		&snap.TSRSmoothed, &snap.FormIndex, &snap.BigMatchRating, &snap.TournamentSuccessScore,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.RatingSnapshot{}, ErrNotFound
	}
	if err != nil {
		return model.RatingSnapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}
	return snap, nil
}
