// Package elo maintains overall and per-surface Elo ratings for every
// player seen in the match stream.
//
// Elo is a Markov chain over each player's chronological match sequence:
// the caller must feed matches in the single global (date, match id) order
// or every subsequent rating silently diverges.
package elo

import (
	"math"

	"github.com/razaool/baseline/internal/domain/model"
)

// Standard Elo constants.
const (
	InitialRating = 1500.0
	BaseK         = 32.0

	logisticBase  = 10.0
	logisticScale = 400.0
)

// Rating is one player's current Elo state across all dimensions.
type Rating struct {
	Overall float64
	Clay    float64
	Grass   float64
	Hard    float64
	Carpet  float64
}

func (r *Rating) surface(s model.Surface) *float64 {
	switch s {
	case model.Clay:
		return &r.Clay
	case model.Grass:
		return &r.Grass
	case model.Carpet:
		return &r.Carpet
	default:
		return &r.Hard
	}
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithInitialRating overrides the starting rating for unseen players.
func WithInitialRating(r float64) Option {
	return func(e *Engine) {
		if r > 0 {
			e.initial = r
		}
	}
}

// WithBaseK overrides the base K-factor.
func WithBaseK(k float64) Option {
	return func(e *Engine) {
		if k > 0 {
			e.baseK = k
		}
	}
}

// Engine owns the per-player Elo state for one replay pass. It is not
// safe for concurrent use; a single orchestrating goroutine drives it.
type Engine struct {
	initial float64
	baseK   float64
	ratings map[int64]*Rating
}

// New creates an Engine with standard constants.
func New(opts ...Option) *Engine {
	e := &Engine{
		initial: InitialRating,
		baseK:   BaseK,
		ratings: make(map[int64]*Rating),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expected returns the logistic expected score of a player rated a against
// an opponent rated b. Expected(a,b) + Expected(b,a) == 1 for any pair.
func Expected(a, b float64) float64 {
	return 1.0 / (1.0 + math.Pow(logisticBase, (b-a)/logisticScale))
}

// Rating returns a copy of the player's current state without mutating the
// engine; unseen players read as the configured starting rating.
func (e *Engine) Rating(playerID int64) Rating {
	if r, ok := e.ratings[playerID]; ok {
		return *r
	}
	return Rating{
		Overall: e.initial,
		Clay:    e.initial,
		Grass:   e.initial,
		Hard:    e.initial,
		Carpet:  e.initial,
	}
}

// Seen reports whether the player has any rating history yet.
func (e *Engine) Seen(playerID int64) bool {
	_, ok := e.ratings[playerID]
	return ok
}

// TrackedPlayers returns the number of players with live state.
func (e *Engine) TrackedPlayers() int {
	return len(e.ratings)
}

func (e *Engine) state(playerID int64) *Rating {
	r, ok := e.ratings[playerID]
	if !ok {
		r = &Rating{
			Overall: e.initial,
			Clay:    e.initial,
			Grass:   e.initial,
			Hard:    e.initial,
			Carpet:  e.initial,
		}
		e.ratings[playerID] = r
	}
	return r
}

// Apply updates both players for one match and returns their post-match
// states (winner first). The overall dimension updates on every match; only
// the matched surface's sub-rating updates. Winner gain equals loser loss
// on each dimension.
func (e *Engine) Apply(m model.Match, surface model.Surface, tierWeight float64) (winner, loser Rating) {
	if tierWeight <= 0 {
		tierWeight = 1.0
	}
	k := e.baseK * tierWeight

	w := e.state(m.WinnerID)
	l := e.state(m.LoserID())

	w.Overall, l.Overall = updatePair(w.Overall, l.Overall, k)

	ws, ls := w.surface(surface), l.surface(surface)
	*ws, *ls = updatePair(*ws, *ls, k)

	return *w, *l
}

// updatePair applies one zero-sum Elo exchange on a single dimension.
// Both new values derive from the same pre-match expectation.
func updatePair(winnerRating, loserRating, k float64) (newWinner, newLoser float64) {
	delta := k * (1.0 - Expected(winnerRating, loserRating))
	return winnerRating + delta, loserRating - delta
}
