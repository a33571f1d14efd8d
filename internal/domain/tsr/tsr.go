// Package tsr derives the Tennis Skill Rating: the Elo point estimate
// paired with a Bayesian-style confidence band built from experience,
// inactivity, and recent rating volatility. It is not an independent
// skill estimate; tsr_rating is always the player's overall Elo.
package tsr

import (
	"math"
	"time"

	"github.com/razaool/baseline/internal/domain/model"
)

// Uncertainty model constants.
const (
	MaxUncertainty = 350.0
	MinUncertainty = 25.0

	// experienceDivisor controls how fast experience shrinks uncertainty:
	// ~100 after 100 matches, ~50 after 1000.
	experienceDivisor = 3.0

	ratingPeriodDays = 30.0
	inactivityGrowth = 0.01

	volatilityScale     = 400.0
	volatilityMinWindow = 10
	historyWindow       = 50

	hoursPerDay = 24.0
)

// Surface uncertainty multipliers: heuristics reflecting relative match
// volume per surface, exposed as tunables rather than calibrated constants.
const (
	defaultClayMultiplier  = 1.2
	defaultGrassMultiplier = 1.56
	defaultHardMultiplier  = 1.08
)

// Estimate is the TSR view of one player after one match.
type Estimate struct {
	Rating           float64
	Uncertainty      float64
	ClayUncertainty  float64
	GrassUncertainty float64
	HardUncertainty  float64
}

type playerStats struct {
	elos       []float64 // trailing Elo values, capped at historyWindow
	lastPlayed time.Time
	matches    int
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithSurfaceMultipliers overrides the per-surface uncertainty multipliers.
func WithSurfaceMultipliers(clay, grass, hard float64) Option {
	return func(e *Engine) {
		if clay > 0 && grass > 0 && hard > 0 {
			e.multipliers[model.Clay] = clay
			e.multipliers[model.Grass] = grass
			e.multipliers[model.Hard] = hard
		}
	}
}

// Engine tracks the per-player activity statistics behind the uncertainty
// band. Not safe for concurrent use.
type Engine struct {
	stats       map[int64]*playerStats
	multipliers map[model.Surface]float64
}

// New creates an Engine with the default surface multipliers.
func New(opts ...Option) *Engine {
	e := &Engine{
		stats: make(map[int64]*playerStats),
		multipliers: map[model.Surface]float64{
			model.Clay:  defaultClayMultiplier,
			model.Grass: defaultGrassMultiplier,
			model.Hard:  defaultHardMultiplier,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Observe folds one post-match Elo value into the player's history and
// returns the TSR estimate for that point in time. careerMatchNumber is the
// player's strictly increasing match count including this match.
func (e *Engine) Observe(playerID int64, date time.Time, eloOverall float64, careerMatchNumber int) Estimate {
	s, ok := e.stats[playerID]
	if !ok {
		s = &playerStats{}
		e.stats[playerID] = s
	}

	var daysSinceLast float64
	if !s.lastPlayed.IsZero() {
		daysSinceLast = date.Sub(s.lastPlayed).Hours() / hoursPerDay
	}
	s.lastPlayed = date
	s.matches = careerMatchNumber

	s.elos = append(s.elos, eloOverall)
	if len(s.elos) > historyWindow {
		s.elos = s.elos[len(s.elos)-historyWindow:]
	}

	window := len(s.elos)
	var eloStdDev float64
	if window >= volatilityMinWindow {
		eloStdDev = stdDev(s.elos)
	}

	u := Uncertainty(careerMatchNumber, daysSinceLast, eloStdDev, window)
	return Estimate{
		Rating:           eloOverall,
		Uncertainty:      u,
		ClayUncertainty:  u * e.multipliers[model.Clay],
		GrassUncertainty: u * e.multipliers[model.Grass],
		HardUncertainty:  u * e.multipliers[model.Hard],
	}
}

// Uncertainty combines the experience, inactivity, and volatility terms
// into a rating deviation clamped to [25, 350].
func Uncertainty(matchCount int, daysSinceLast, recentEloStdDev float64, recentWindowSize int) float64 {
	experience := MaxUncertainty
	if matchCount > 0 {
		experience = MaxUncertainty / (1.0 + math.Log(float64(matchCount)+1.0)/experienceDivisor)
	}

	inactivity := 1.0
	if daysSinceLast > 0 {
		inactivity = math.Sqrt(1.0 + (daysSinceLast/ratingPeriodDays)*inactivityGrowth)
	}

	volatility := 1.0
	if recentEloStdDev > 0 && recentWindowSize >= volatilityMinWindow {
		volatility = 1.0 + recentEloStdDev/volatilityScale
	}

	u := experience * inactivity * volatility
	return math.Min(math.Max(u, MinUncertainty), MaxUncertainty)
}

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}
