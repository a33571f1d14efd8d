// Package glicko maintains Glicko-2 ratings (rating, deviation, volatility)
// per player, overall and per surface.
//
// Reference: Glickman, "Example of the Glicko-2 system",
// http://www.glicko.net/glicko/glicko2.pdf
package glicko

import (
	"math"
	"time"

	"github.com/razaool/baseline/internal/domain/model"
)

// Glicko-2 system constants.
const (
	InitialRating     = 1500.0
	InitialRD         = 350.0
	InitialVolatility = 0.06

	// scale converts between the display scale and the internal mu/phi scale.
	scale = 173.7178

	// One rating period for inactivity decay.
	ratingPeriodDays = 30.0

	hoursPerDay = 24.0
)

// Rating is one Glicko-2 state on the display scale.
type Rating struct {
	Rating     float64
	RD         float64
	Volatility float64
}

// PlayerRatings is a player's full Glicko-2 state: overall plus the three
// surfaces with enough match volume to rate independently. Carpet matches
// fold into the hard state.
type PlayerRatings struct {
	Overall Rating
	Clay    Rating
	Grass   Rating
	Hard    Rating
}

func (p *PlayerRatings) surface(s model.Surface) *Rating {
	switch s {
	case model.Clay:
		return &p.Clay
	case model.Grass:
		return &p.Grass
	default:
		return &p.Hard
	}
}

type playerState struct {
	PlayerRatings
	lastPlayed time.Time // zero until the first match
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithInitialState overrides the starting rating, RD, and volatility.
func WithInitialState(rating, rd, volatility float64) Option {
	return func(e *Engine) {
		if rating > 0 && rd > 0 && volatility > 0 {
			e.initial = Rating{Rating: rating, RD: rd, Volatility: volatility}
		}
	}
}

// Engine owns the per-player Glicko-2 state for one replay pass. Not safe
// for concurrent use.
type Engine struct {
	initial Rating
	states  map[int64]*playerState
}

// New creates an Engine with the standard 1500/350/0.06 initial state.
func New(opts ...Option) *Engine {
	e := &Engine{
		initial: Rating{Rating: InitialRating, RD: InitialRD, Volatility: InitialVolatility},
		states:  make(map[int64]*playerState),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ratings returns a copy of the player's current state without mutating the
// engine; unseen players read as the configured initial state.
func (e *Engine) Ratings(playerID int64) PlayerRatings {
	if s, ok := e.states[playerID]; ok {
		return s.PlayerRatings
	}
	return PlayerRatings{Overall: e.initial, Clay: e.initial, Grass: e.initial, Hard: e.initial}
}

func (e *Engine) state(playerID int64) *playerState {
	s, ok := e.states[playerID]
	if !ok {
		s = &playerState{PlayerRatings: PlayerRatings{
			Overall: e.initial,
			Clay:    e.initial,
			Grass:   e.initial,
			Hard:    e.initial,
		}}
		e.states[playerID] = s
	}
	return s
}

// Apply updates both players for one match and returns their post-match
// states (winner first). Both players first receive inactivity decay from
// their own last-activity date, then both updates read from the same
// pre-match snapshot of each other's state.
func (e *Engine) Apply(m model.Match, surface model.Surface, tierWeight float64) (winner, loser PlayerRatings) {
	if tierWeight <= 0 {
		tierWeight = 1.0
	}

	w := e.state(m.WinnerID)
	l := e.state(m.LoserID())

	e.decay(w, m.Date)
	e.decay(l, m.Date)

	// Freeze pre-match state so neither update observes the other's result.
	preW, preL := w.PlayerRatings, l.PlayerRatings

	w.Overall = updatePair(preW.Overall, preL.Overall, 1.0, tierWeight)
	l.Overall = updatePair(preL.Overall, preW.Overall, 0.0, tierWeight)

	ws, ls := w.PlayerRatings.surface(surface), l.PlayerRatings.surface(surface)
	*ws = updatePair(*preW.surface(surface), *preL.surface(surface), 1.0, tierWeight)
	*ls = updatePair(*preL.surface(surface), *preW.surface(surface), 0.0, tierWeight)

	w.lastPlayed = m.Date
	l.lastPlayed = m.Date

	return w.PlayerRatings, l.PlayerRatings
}

// decay inflates RD for time away from competition, overall and on every
// surface, from the player's single last-activity date.
func (e *Engine) decay(s *playerState, now time.Time) {
	if s.lastPlayed.IsZero() {
		return
	}
	days := now.Sub(s.lastPlayed).Hours() / hoursPerDay
	if days <= 0 {
		return
	}
	s.Overall = InflateRD(s.Overall, days)
	s.Clay = InflateRD(s.Clay, days)
	s.Grass = InflateRD(s.Grass, days)
	s.Hard = InflateRD(s.Hard, days)
}

// InflateRD grows a rating's deviation for elapsedDays of inactivity:
// RD' = min(350, sqrt(RD^2 + t*sigma^2)) with t in 30-day rating periods.
// RD never decreases and never exceeds the initial ceiling.
func InflateRD(r Rating, elapsedDays float64) Rating {
	if elapsedDays <= 0 {
		return r
	}
	t := elapsedDays / ratingPeriodDays
	rd := math.Sqrt(r.RD*r.RD + t*r.Volatility*r.Volatility)
	r.RD = math.Min(rd, InitialRD)
	return r
}

// g is the Glicko-2 weighting function of the opponent's deviation.
func g(phi float64) float64 {
	return 1.0 / math.Sqrt(1.0+3.0*phi*phi/(math.Pi*math.Pi))
}

// expected is the Glicko-2 win expectation on the internal scale.
func expected(mu, muOpp, phiOpp float64) float64 {
	return 1.0 / (1.0 + math.Exp(-g(phiOpp)*(mu-muOpp)))
}

// updatePair applies one Glicko-2 update for a single player against a
// single opponent, both taken at their pre-match state. outcome is 1 for a
// win and 0 for a loss. The match variance is divided by the tournament
// tier weight: higher-tier matches carry more information.
//
// Volatility is held constant: sigma still drives inactivity inflation but
// is not re-estimated with the Glickman Illinois iteration.
func updatePair(p, opp Rating, outcome, tierWeight float64) Rating {
	mu := (p.Rating - InitialRating) / scale
	phi := p.RD / scale
	muOpp := (opp.Rating - InitialRating) / scale
	phiOpp := opp.RD / scale
	sigma := p.Volatility

	gOpp := g(phiOpp)
	e := expected(mu, muOpp, phiOpp)

	v := 1.0 / (gOpp * gOpp * e * (1.0 - e))
	v /= tierWeight

	phiNew := 1.0 / math.Sqrt(1.0/(phi*phi+sigma*sigma)+1.0/v)
	muNew := mu + phiNew*phiNew*gOpp*(outcome-e)

	return Rating{
		Rating:     muNew*scale + InitialRating,
		RD:         phiNew * scale,
		Volatility: sigma,
	}
}
