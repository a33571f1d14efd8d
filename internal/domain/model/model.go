// Package model contains the domain types shared by the rating engines,
// the replay orchestrator, and the persistence adapters.
package model

import (
	"strings"
	"time"
)

// Surface is a playing surface recognized by the rating engines.
type Surface string

// Recognized surfaces.
const (
	Clay   Surface = "clay"
	Grass  Surface = "grass"
	Hard   Surface = "hard"
	Carpet Surface = "carpet"
)

// NormalizeSurface maps a raw surface string to a recognized Surface.
// Unknown or empty values fall back to hard; the second return reports
// whether the input was recognized so callers can log the data-quality
// warning.
func NormalizeSurface(raw string) (Surface, bool) {
	switch Surface(strings.ToLower(strings.TrimSpace(raw))) {
	case Clay:
		return Clay, true
	case Grass:
		return Grass, true
	case Hard:
		return Hard, true
	case Carpet:
		return Carpet, true
	default:
		return Hard, false
	}
}

// Player carries the stable identity of a professional player. Identity is
// canonicalized upstream; the engine never merges or deletes players.
type Player struct {
	ID           int64
	Name         string
	Country      string
	BirthDate    time.Time
	ProDebutYear int
}

// Match is one immutable row of the chronological match log.
type Match struct {
	ID         int64
	Date       time.Time
	Tournament string
	Tier       string
	Surface    string
	Round      string
	Player1ID  int64
	Player2ID  int64
	WinnerID   int64
	Score      string
}

// LoserID returns the id of the player who lost the match.
func (m Match) LoserID() int64 {
	if m.WinnerID == m.Player1ID {
		return m.Player2ID
	}
	return m.Player1ID
}

// Before reports whether m sorts before other under the stream ordering
// key (date, match id).
func (m Match) Before(other Match) bool {
	if !m.Date.Equal(other.Date) {
		return m.Date.Before(other.Date)
	}
	return m.ID < other.ID
}

// RatingSnapshot is one player's full rating state immediately after one
// match. Exactly one snapshot exists per (player, match) the player played.
type RatingSnapshot struct {
	PlayerID          int64
	MatchID           int64
	Date              time.Time
	CareerMatchNumber int

	EloOverall float64
	EloClay    float64
	EloGrass   float64
	EloHard    float64

	Glicko2Rating     float64
	Glicko2RD         float64
	Glicko2Volatility float64

	Glicko2ClayRating     float64
	Glicko2ClayRD         float64
	Glicko2ClayVolatility float64

	Glicko2GrassRating     float64
	Glicko2GrassRD         float64
	Glicko2GrassVolatility float64

	Glicko2HardRating     float64
	Glicko2HardRD         float64
	Glicko2HardVolatility float64

	TSRRating           float64
	TSRUncertainty      float64
	TSRClayUncertainty  float64
	TSRGrassUncertainty float64
	TSRHardUncertainty  float64
	TSRSmoothed         float64

	FormIndex              float64
	BigMatchRating         float64
	TournamentSuccessScore float64
}
