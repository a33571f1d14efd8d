// Command baseline replays the full chronological match log through every
// rating stage and persists one snapshot per (player, match).
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/razaool/baseline/internal/adapters/repository"
	"github.com/razaool/baseline/internal/adapters/source"
	"github.com/razaool/baseline/internal/config"
	"github.com/razaool/baseline/internal/domain/elo"
	"github.com/razaool/baseline/internal/domain/glicko"
	"github.com/razaool/baseline/internal/domain/stats"
	"github.com/razaool/baseline/internal/domain/tier"
	"github.com/razaool/baseline/internal/engine"
	"github.com/razaool/baseline/pkg/logger"
)

// Metrics endpoint server timeouts.
const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString("baseline: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return err
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel))
	}
	if cfg.DatabaseURL == "" {
		return errors.New("database_url is required (BASELINE_DATABASE_URL)")
	}

	// Serve Prometheus metrics for the duration of the batch.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(ctx, "metrics server stopped", logger.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return err
	}

	store := repository.NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	matches, err := source.NewPostgresSource(ctx, pool)
	if err != nil {
		return err
	}
	defer matches.Close()

	tierTable := tier.New(tier.WithEntries(tierOverrides(cfg)))
	replay := engine.New(store,
		engine.WithLogger(log.Named("replay")),
		engine.WithTierTable(tierTable),
		engine.WithEloEngine(elo.New(
			elo.WithInitialRating(cfg.InitialRating),
			elo.WithBaseK(cfg.BaseKFactor),
		)),
		engine.WithGlickoEngine(glicko.New(
			glicko.WithInitialState(cfg.InitialRating, cfg.InitialRD, cfg.InitialVolatility),
		)),
		engine.WithStatsEngine(stats.New(
			stats.WithEliteThreshold(cfg.EliteEloThreshold),
			stats.WithWindows(cfg.FormWindow, cfg.BigMatchWindow, cfg.TournamentSuccessWindow),
		)),
		engine.WithFinalizeWorkers(cfg.FinalizeWorkers),
		engine.WithRunID(cfg.RunID),
	)

	summary, err := replay.Run(ctx, matches)
	if err != nil {
		return err
	}

	logTopPlayers(ctx, log, store, cfg.SummaryTopN)

	log.Info(ctx, "done",
		logger.String("runID", summary.RunID),
		logger.Int("matches", summary.Matches),
		logger.Int("players", summary.Players),
		logger.Int("snapshots", summary.Snapshots),
		logger.Any("elapsed", summary.Elapsed),
	)
	return nil
}

func tierOverrides(cfg *config.Config) map[string]tier.Info {
	overrides := make(map[string]tier.Info, len(cfg.TierOverrides))
	for name, entry := range cfg.TierOverrides {
		overrides[name] = tier.Info{Weight: entry.Weight, Importance: entry.Importance}
	}
	return overrides
}

// logTopPlayers prints a post-replay sanity summary of the leaderboard.
func logTopPlayers(ctx context.Context, log logger.Logger, store repository.Store, n int) {
	rows, err := store.TopPlayers(ctx, n)
	if err != nil {
		log.Warn(ctx, "leaderboard summary failed", logger.Error(err))
		return
	}
	for i, row := range rows {
		log.Info(ctx, "top player",
			logger.Int("rank", i+1),
			logger.Int64("playerID", row.PlayerID),
			logger.Float64("elo", row.EloOverall),
			logger.Float64("tsr", row.TSRRating),
			logger.Float64("uncertainty", row.TSRUncertainty),
		)
	}
}
