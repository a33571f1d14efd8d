package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/razaool/baseline/internal/domain/model"
)

// PostgresSource streams the matches table in (date, match_id) order.
type PostgresSource struct {
	rows pgx.Rows
}

// NewPostgresSource opens the ordered cursor over the match log.
func NewPostgresSource(ctx context.Context, pool *pgxpool.Pool) (*PostgresSource, error) {
	rows, err := pool.Query(ctx, `
		SELECT match_id, date, tournament, tournament_tier, surface, round,
		       player1_id, player2_id, winner_id, score
		  FROM matches
		 ORDER BY date, match_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query match stream: %w", err)
	}
	return &PostgresSource{rows: rows}, nil
}

// Next returns the next match in stream order.
func (s *PostgresSource) Next(ctx context.Context) (model.Match, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Match{}, false, err
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return model.Match{}, false, fmt.Errorf("read match stream: %w", err)
		}
		return model.Match{}, false, nil
	}
	var m model.Match
	if err := s.rows.Scan(
		&m.ID, &m.Date, &m.Tournament, &m.Tier, &m.Surface, &m.Round,
		&m.Player1ID, &m.Player2ID, &m.WinnerID, &m.Score,
	); err != nil {
		return model.Match{}, false, fmt.Errorf("scan match row: %w", err)
	}
	return m, true, nil
}

// Close releases the underlying cursor.
func (s *PostgresSource) Close() { s.rows.Close() }
