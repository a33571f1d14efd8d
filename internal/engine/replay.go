// Package engine orchestrates one strictly ordered batch replay of the
// match log through every rating stage, assembling one RatingSnapshot per
// (player, match) and committing whole player histories to the store.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/razaool/baseline/internal/adapters/repository"
	"github.com/razaool/baseline/internal/adapters/source"
	"github.com/razaool/baseline/internal/domain/elo"
	"github.com/razaool/baseline/internal/domain/glicko"
	"github.com/razaool/baseline/internal/domain/model"
	"github.com/razaool/baseline/internal/domain/smoothing"
	"github.com/razaool/baseline/internal/domain/stats"
	"github.com/razaool/baseline/internal/domain/tier"
	"github.com/razaool/baseline/internal/domain/tsr"
	"github.com/razaool/baseline/pkg/logger"
	"github.com/razaool/baseline/pkg/metrics"
)

// Summary reports what one replay run produced.
type Summary struct {
	RunID          string
	Matches        int
	Players        int
	Snapshots      int
	SkippedPlayers int
	Elapsed        time.Duration
}

// Option applies a configuration option to the Replay.
type Option func(*Replay)

// WithTierTable overrides the tournament tier table.
func WithTierTable(t *tier.Table) Option {
	return func(r *Replay) {
		if t != nil {
			r.tiers = t
		}
	}
}

// WithEloEngine overrides the Elo engine.
func WithEloEngine(e *elo.Engine) Option {
	return func(r *Replay) {
		if e != nil {
			r.elo = e
		}
	}
}

// WithGlickoEngine overrides the Glicko-2 engine.
func WithGlickoEngine(e *glicko.Engine) Option {
	return func(r *Replay) {
		if e != nil {
			r.glicko = e
		}
	}
}

// WithTSREngine overrides the TSR uncertainty engine.
func WithTSREngine(e *tsr.Engine) Option {
	return func(r *Replay) {
		if e != nil {
			r.tsr = e
		}
	}
}

// WithStatsEngine overrides the rolling-metrics engine.
func WithStatsEngine(e *stats.Engine) Option {
	return func(r *Replay) {
		if e != nil {
			r.stats = e
		}
	}
}

// WithFinalizeWorkers sets how many players are smoothed and persisted
// concurrently once the sequential replay pass has finished.
func WithFinalizeWorkers(n int) Option {
	return func(r *Replay) {
		if n > 0 {
			r.finalizeWorkers = n
		}
	}
}

// WithRunID resumes (or names) a replay run. Players already checkpointed
// under this id are replayed in memory but not persisted again.
func WithRunID(id string) Option {
	return func(r *Replay) {
		if id != "" {
			r.runID = id
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Replay) {
		if l != nil {
			r.log = l
		}
	}
}

// Replay owns all per-player rating state for one pass over the match log.
// The match loop is single-threaded: every engine carries per-player state
// that must see matches in chronological order. The only parallelism is the
// per-player finalize stage, where players are independent.
type Replay struct {
	store repository.Store
	tiers *tier.Table

	elo    *elo.Engine
	glicko *glicko.Engine
	tsr    *tsr.Engine
	stats  *stats.Engine

	careers map[int64]int
	pending map[int64][]model.RatingSnapshot

	warnedTiers    map[string]struct{}
	warnedSurfaces map[string]struct{}

	finalizeWorkers int
	runID           string
	log             logger.Logger

	haveLast bool
	last     model.Match
}

// New constructs a Replay writing into the given store.
func New(store repository.Store, opts ...Option) *Replay {
	r := &Replay{
		store:           store,
		tiers:           tier.New(),
		elo:             elo.New(),
		glicko:          glicko.New(),
		tsr:             tsr.New(),
		stats:           stats.New(),
		careers:         make(map[int64]int),
		pending:         make(map[int64][]model.RatingSnapshot),
		warnedTiers:     make(map[string]struct{}),
		warnedSurfaces:  make(map[string]struct{}),
		finalizeWorkers: runtime.NumCPU(),
		runID:           uuid.NewString(),
		log:             logger.Named("replay"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunID returns the identifier under which this replay checkpoints.
func (r *Replay) RunID() string { return r.runID }

// Run consumes the match stream to exhaustion, then smooths and persists
// every player's complete history. The stream must be sorted by
// (date, match id); any regression aborts the batch.
func (r *Replay) Run(ctx context.Context, src source.MatchSource) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: r.runID}

	r.log.Info(ctx, "starting replay", logger.String("runID", r.runID))

	for {
		m, ok, err := src.Next(ctx)
		if err != nil {
			return summary, fmt.Errorf("read match stream: %w", err)
		}
		if !ok {
			break
		}
		if err := r.process(ctx, m); err != nil {
			return summary, err
		}
		summary.Matches++
	}

	committed, err := r.committedPlayers(ctx)
	if err != nil {
		return summary, err
	}

	players := make([]int64, 0, len(r.pending))
	for playerID := range r.pending {
		players = append(players, playerID)
	}
	sort.Slice(players, func(i, j int) bool { return players[i] < players[j] })

	if err := r.finalize(ctx, players, committed, &summary); err != nil {
		return summary, err
	}

	summary.Elapsed = time.Since(start)
	metrics.ObserveRunDuration(summary.Elapsed)
	r.log.Info(ctx, "replay complete",
		logger.String("runID", r.runID),
		logger.Int("matches", summary.Matches),
		logger.Int("players", summary.Players),
		logger.Int("snapshots", summary.Snapshots),
		logger.Int("skippedPlayers", summary.SkippedPlayers),
	)
	return summary, nil
}

// process threads one match through every sequential stage.
func (r *Replay) process(ctx context.Context, m model.Match) error {
	if r.haveLast && m.Before(r.last) {
		return fmt.Errorf("match %d after match %d: %w", m.ID, r.last.ID, ErrOutOfOrder)
	}
	r.haveLast, r.last = true, m

	if m.Player1ID == m.Player2ID {
		return fmt.Errorf("match %d: %w", m.ID, ErrSelfMatch)
	}
	if m.WinnerID != m.Player1ID && m.WinnerID != m.Player2ID {
		return fmt.Errorf("match %d: %w", m.ID, ErrUnknownWinner)
	}

	info, known := r.tiers.Lookup(m.Tier)
	if !known {
		if _, warned := r.warnedTiers[m.Tier]; !warned {
			r.warnedTiers[m.Tier] = struct{}{}
			r.log.Warn(ctx, "unknown tournament tier, using weight 1.0",
				logger.String("tier", m.Tier),
				logger.Int64("matchID", m.ID),
			)
		}
		metrics.RecordUnknownTier()
	}

	surface, recognized := model.NormalizeSurface(m.Surface)
	if !recognized {
		if _, warned := r.warnedSurfaces[m.Surface]; !warned {
			r.warnedSurfaces[m.Surface] = struct{}{}
			r.log.Warn(ctx, "unrecognized surface, defaulting to hard",
				logger.String("surface", m.Surface),
				logger.Int64("matchID", m.ID),
			)
		}
		metrics.RecordUnknownSurface()
	}

	winnerID, loserID := m.WinnerID, m.LoserID()

	// Pre-match ratings feed the big-match metric; the opponent's rating
	// is "missing" until their first processed match.
	preWinner, preLoser := r.elo.Rating(winnerID), r.elo.Rating(loserID)
	winnerSeen, loserSeen := r.elo.Seen(winnerID), r.elo.Seen(loserID)

	winnerElo, loserElo := r.elo.Apply(m, surface, info.Weight)
	winnerGlicko, loserGlicko := r.glicko.Apply(m, surface, info.Weight)

	r.careers[winnerID]++
	r.careers[loserID]++

	r.appendSnapshot(m, winnerID, winnerElo, winnerGlicko, stats.Outcome{
		Won:              true,
		PlayerElo:        preWinner.Overall,
		OpponentElo:      preLoser.Overall,
		OpponentEloKnown: loserSeen,
		Round:            m.Round,
		TierWeight:       info.Weight,
	})
	r.appendSnapshot(m, loserID, loserElo, loserGlicko, stats.Outcome{
		Won:              false,
		PlayerElo:        preLoser.Overall,
		OpponentElo:      preWinner.Overall,
		OpponentEloKnown: winnerSeen,
		Round:            m.Round,
		TierWeight:       info.Weight,
	})

	metrics.RecordMatchProcessed()
	metrics.UpdateTrackedPlayers(r.elo.TrackedPlayers())
	return nil
}

// appendSnapshot assembles one player's post-match snapshot and buffers it
// until the player's history is complete.
func (r *Replay) appendSnapshot(m model.Match, playerID int64, e elo.Rating, g glicko.PlayerRatings, outcome stats.Outcome) {
	career := r.careers[playerID]
	estimate := r.tsr.Observe(playerID, m.Date, e.Overall, career)
	rolled := r.stats.Record(playerID, outcome)

	r.pending[playerID] = append(r.pending[playerID], model.RatingSnapshot{
		PlayerID:          playerID,
		MatchID:           m.ID,
		Date:              m.Date,
		CareerMatchNumber: career,

		EloOverall: e.Overall,
		EloClay:    e.Clay,
		EloGrass:   e.Grass,
		EloHard:    e.Hard,

		Glicko2Rating:     g.Overall.Rating,
		Glicko2RD:         g.Overall.RD,
		Glicko2Volatility: g.Overall.Volatility,

		Glicko2ClayRating:     g.Clay.Rating,
		Glicko2ClayRD:         g.Clay.RD,
		Glicko2ClayVolatility: g.Clay.Volatility,

		Glicko2GrassRating:     g.Grass.Rating,
		Glicko2GrassRD:         g.Grass.RD,
		Glicko2GrassVolatility: g.Grass.Volatility,

		Glicko2HardRating:     g.Hard.Rating,
		Glicko2HardRD:         g.Hard.RD,
		Glicko2HardVolatility: g.Hard.Volatility,

		TSRRating:           estimate.Rating,
		TSRUncertainty:      estimate.Uncertainty,
		TSRClayUncertainty:  estimate.ClayUncertainty,
		TSRGrassUncertainty: estimate.GrassUncertainty,
		TSRHardUncertainty:  estimate.HardUncertainty,

		FormIndex:              rolled.FormIndex,
		BigMatchRating:         rolled.BigMatchRating,
		TournamentSuccessScore: rolled.TournamentSuccessScore,
	})
}

func (r *Replay) committedPlayers(ctx context.Context) (map[int64]struct{}, error) {
	committed, err := r.store.CommittedPlayers(ctx, r.runID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoints for run %s: %w", r.runID, err)
	}
	return committed, nil
}

// finalize smooths and commits each player's complete history. Players are
// independent of each other, so this stage fans out over a worker pool;
// each player still commits atomically, keeping the run resumable at
// player boundaries.
func (r *Replay) finalize(ctx context.Context, players []int64, committed map[int64]struct{}, summary *Summary) error {
	workers := r.finalizeWorkers
	if workers > len(players) {
		workers = len(players)
	}
	if workers < 1 {
		workers = 1
	}

	playerCh := make(chan int64)
	errCh := make(chan error, workers)
	var mu sync.Mutex
	var wg sync.WaitGroup

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for playerID := range playerCh {
				if err := r.finalizePlayer(workerCtx, playerID); err != nil {
					select {
					case errCh <- err:
					default:
					}
					cancel()
					return
				}
				mu.Lock()
				summary.Players++
				summary.Snapshots += len(r.pending[playerID])
				mu.Unlock()
			}
		}()
	}

	for _, playerID := range players {
		if _, done := committed[playerID]; done {
			summary.SkippedPlayers++
			continue
		}
		select {
		case playerCh <- playerID:
		case <-workerCtx.Done():
		}
	}
	close(playerCh)
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
	}
	return ctx.Err()
}

// finalizePlayer runs the smoothing stage over the player's completed TSR
// series and commits the whole history plus its checkpoint.
func (r *Replay) finalizePlayer(ctx context.Context, playerID int64) error {
	start := time.Now()
	snapshots := r.pending[playerID]

	series := make([]float64, len(snapshots))
	for i, snap := range snapshots {
		series[i] = snap.TSRRating
	}
	smoothed := smoothing.Smooth(series)
	for i := range snapshots {
		snapshots[i].TSRSmoothed = smoothed[i]
	}

	if err := r.store.SavePlayerHistory(ctx, playerID, snapshots); err != nil {
		return fmt.Errorf("commit player %d: %w", playerID, err)
	}
	if err := r.store.SaveCheckpoint(ctx, r.runID, playerID); err != nil {
		return fmt.Errorf("checkpoint player %d: %w", playerID, err)
	}

	metrics.RecordPlayerFinalized()
	metrics.RecordSnapshotsWritten(len(snapshots))
	metrics.ObserveFlushDuration(time.Since(start))
	return nil
}
