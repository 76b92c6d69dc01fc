package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dkravets/hearthledger/internal/engine/freezebank"
	"github.com/dkravets/hearthledger/internal/engine/habits"
	"github.com/dkravets/hearthledger/internal/engine/reconcile"
	"github.com/dkravets/hearthledger/internal/logger"
	"github.com/dkravets/hearthledger/internal/store"
	"github.com/dkravets/hearthledger/internal/store/sqlite"
)

func main() {
	// Parse command-line flags
	var (
		dbPath   = flag.String("db", os.Getenv("HEARTHLEDGER_DB"), "sqlite database path (or set HEARTHLEDGER_DB)")
		interval = flag.Duration("interval", time.Hour, "time between maintenance passes")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New("scheduler")

	if *dbPath == "" {
		log.Fatal().Msg("A database path is required: set -db or HEARTHLEDGER_DB")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *dbPath).Msg("Failed to open database")
	}
	defer st.Close()

	log.Info().Dur("interval", *interval).Msg("Starting scheduler service")

	// Run one pass immediately so a restart never waits a full interval.
	runPass(ctx, st, log)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			runPass(ctx, st, log)
		case <-quit:
			log.Info().Msg("Shutting down scheduler service...")
			cancel()
			return
		}
	}
}

// runPass executes one maintenance pass: stale-habit sweep, monthly freeze
// token rollover, and point reconciliation. Every step is idempotent for
// the same boundary, so duplicate, early, or late ticks are all safe.
func runPass(ctx context.Context, st store.Store, log zerolog.Logger) {
	now := time.Now()

	snap, err := st.Snapshot(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read snapshot")
		return
	}

	// Stale sweep: zero counters whose period has lapsed. No point clawback.
	sweep := habits.SweepStale(snap.Habits, now)
	if len(sweep.Mutations) > 0 {
		if err := st.Apply(ctx, sweep.Mutations); err != nil {
			log.Error().Err(err).Msg("Failed to apply stale sweep")
			return
		}
	}
	for _, id := range sweep.Skipped {
		log.Warn().Str("habit_id", id).Msg("Habit record failed integrity check; skipped")
	}
	if len(sweep.Reset) > 0 {
		log.Info().Int("reset", len(sweep.Reset)).Msg("Stale habit counters zeroed")
	}

	// Monthly token rollover: a no-op within the same calendar month.
	if snap.FreezeBank != nil {
		bank, muts := freezebank.Rollover(*snap.FreezeBank, now, uuid.New().String())
		if len(muts) > 0 {
			if err := st.Apply(ctx, muts); err != nil {
				log.Error().Err(err).Msg("Failed to apply token rollover")
				return
			}
			log.Info().Int("tokens", bank.Tokens).Msg("Freeze tokens rolled over")
		}
	}

	// Reconciliation reads the post-sweep state.
	snap, err = st.Snapshot(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to re-read snapshot")
		return
	}
	points, muts := reconcile.Reconcile(snap.Household, snap.Habits, snap.Submissions, now)
	if len(muts) > 0 {
		if err := st.Apply(ctx, muts); err != nil {
			log.Error().Err(err).Msg("Failed to apply reconciliation")
			return
		}
		log.Warn().
			Int("total", points.Total).
			Msg("Point counters drifted from history; overwritten")
	}

	log.Info().Msg("Maintenance pass completed")
}
