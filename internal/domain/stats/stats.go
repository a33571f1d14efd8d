// Package stats computes the three rolling contextual metrics derived from
// the match outcome stream and Elo values: Form Index, Big-Match Rating,
// and Tournament Success Score.
//
// Each metric is a deterministic trailing-window statistic over a player's
// chronological match sequence, never a cumulative running average.
package stats

import (
	"strings"

	"github.com/razaool/baseline/internal/domain/elo"
)

// Window and threshold defaults.
const (
	DefaultFormWindow              = 20
	DefaultBigMatchWindow          = 50
	DefaultTournamentSuccessWindow = 20

	// DefaultEliteThreshold is the opponent Elo above which a match counts
	// toward the Big-Match Rating.
	DefaultEliteThreshold = 2400.0

	// NeutralForm is the Form Index of a player with no history.
	NeutralForm = 50.0

	formScale     = 100.0
	bigMatchScale = 100.0

	// Linear recency weights across the form window.
	oldestFormWeight = 0.5
	latestFormWeight = 1.0
)

// roundValue maps the round reached to its achievement base value.
func roundValue(round string) float64 {
	switch strings.ToUpper(strings.TrimSpace(round)) {
	case "F":
		return 100
	case "SF":
		return 75
	case "QF":
		return 50
	case "R16":
		return 30
	case "R32":
		return 15
	case "R64":
		return 5
	case "R128":
		return 2
	case "RR":
		return 40
	default:
		return 0
	}
}

// Outcome is one player's view of one match, with the values the metrics
// need at that point in time.
type Outcome struct {
	Won bool
	// PlayerElo and OpponentElo are the Elo ratings going into the match.
	PlayerElo   float64
	OpponentElo float64
	// OpponentEloKnown is false when no rating data exists for the
	// opponent; the match is then non-qualifying for Big-Match Rating.
	OpponentEloKnown bool
	Round            string
	TierWeight       float64
}

// Metrics is the snapshot view of all three rolling statistics.
type Metrics struct {
	FormIndex              float64
	BigMatchRating         float64
	TournamentSuccessScore float64
}

type playerHistory struct {
	results  []float64 // win/loss, trailing form window
	bigMatch []float64 // qualifying-match contributions, trailing window
	success  []float64 // per-match achievement values, trailing window
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithEliteThreshold overrides the elite-opponent Elo threshold.
func WithEliteThreshold(threshold float64) Option {
	return func(e *Engine) {
		if threshold > 0 {
			e.eliteThreshold = threshold
		}
	}
}

// WithWindows overrides the three trailing window sizes.
func WithWindows(form, bigMatch, success int) Option {
	return func(e *Engine) {
		if form > 0 {
			e.formWindow = form
		}
		if bigMatch > 0 {
			e.bigMatchWindow = bigMatch
		}
		if success > 0 {
			e.successWindow = success
		}
	}
}

// Engine owns the per-player rolling windows for one replay pass. Not safe
// for concurrent use.
type Engine struct {
	formWindow     int
	bigMatchWindow int
	successWindow  int
	eliteThreshold float64
	players        map[int64]*playerHistory
}

// New creates an Engine with the standard windows and threshold.
func New(opts ...Option) *Engine {
	e := &Engine{
		formWindow:     DefaultFormWindow,
		bigMatchWindow: DefaultBigMatchWindow,
		successWindow:  DefaultTournamentSuccessWindow,
		eliteThreshold: DefaultEliteThreshold,
		players:        make(map[int64]*playerHistory),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Record folds one match outcome into the player's windows and returns the
// metrics as of that match.
func (e *Engine) Record(playerID int64, out Outcome) Metrics {
	h, ok := e.players[playerID]
	if !ok {
		h = &playerHistory{}
		e.players[playerID] = h
	}

	result := 0.0
	if out.Won {
		result = 1.0
	}
	h.results = trail(append(h.results, result), e.formWindow)

	if out.OpponentEloKnown && out.OpponentElo >= e.eliteThreshold {
		contribution := (result - elo.Expected(out.PlayerElo, out.OpponentElo)) * bigMatchScale
		h.bigMatch = trail(append(h.bigMatch, contribution), e.bigMatchWindow)
	}

	tierWeight := out.TierWeight
	if tierWeight <= 0 {
		tierWeight = 1.0
	}
	h.success = trail(append(h.success, roundValue(out.Round)*tierWeight), e.successWindow)

	return Metrics{
		FormIndex:              formIndex(h.results),
		BigMatchRating:         mean(h.bigMatch),
		TournamentSuccessScore: mean(h.success),
	}
}

// formIndex is the linearly recency-weighted win rate over the trailing
// window, scaled to [0, 100]. Oldest result weighs 0.5, most recent 1.0.
func formIndex(results []float64) float64 {
	n := len(results)
	if n == 0 {
		return NeutralForm
	}
	var weightedSum, weightSum float64
	for i, result := range results {
		weight := latestFormWeight
		if n > 1 {
			weight = oldestFormWeight + (latestFormWeight-oldestFormWeight)*float64(i)/float64(n-1)
		}
		weightedSum += result * weight
		weightSum += weight
	}
	return formScale * weightedSum / weightSum
}

// mean is the plain trailing average; zero with an empty window.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// trail keeps only the most recent limit values.
func trail(values []float64, limit int) []float64 {
	if len(values) > limit {
		return values[len(values)-limit:]
	}
	return values
}
