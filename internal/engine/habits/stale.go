package habits

import (
	"fmt"
	"time"

	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/mutation"
)

// PeriodStart returns the instant the habit's current period opened:
// midnight today for daily habits, midnight Monday for weekly ones.
func PeriodStart(p domain.HabitPeriod, now time.Time) time.Time {
	if p == domain.PeriodWeekly {
		return domain.StartOfWeek(now)
	}
	return domain.StartOfDay(now)
}

// IsStale reports whether the habit's progress counter belongs to an
// earlier period than now's. A habit that has never been touched is not
// stale, it is simply fresh.
func IsStale(h domain.Habit, now time.Time) bool {
	if h.LastUpdated.IsZero() {
		return false
	}
	return h.LastUpdated.Before(PeriodStart(h.Period, now))
}

// CheckIntegrity validates the fields the staleness and streak logic
// depend on. A habit that fails this check is excluded from automatic
// sweeps instead of being retried forever.
func CheckIntegrity(h domain.Habit) error {
	for _, d := range h.CompletedDates {
		if _, err := d.Time(); err != nil {
			return fmt.Errorf("habit %s: bad completion date: %w", h.ID, err)
		}
	}
	if h.Period != domain.PeriodDaily && h.Period != domain.PeriodWeekly && h.Period != "" {
		return fmt.Errorf("habit %s: unknown period %q", h.ID, h.Period)
	}
	return nil
}

// SweepResult is the outcome of a scheduled stale sweep.
type SweepResult struct {
	Reset     []string // ids of habits whose counters were zeroed
	Skipped   []string // ids excluded because their records failed integrity checks
	Mutations []mutation.Mutation
}

// SweepStale zeroes the counters of every stale habit. Points are never
// clawed back here: time the user never acted on costs nothing. Habits
// whose records cannot be validated are skipped and reported, never
// retried in a loop.
func SweepStale(hs []domain.Habit, now time.Time) SweepResult {
	var res SweepResult
	for _, h := range hs {
		if err := CheckIntegrity(h); err != nil {
			res.Skipped = append(res.Skipped, h.ID)
			continue
		}
		if !IsStale(h, now) || h.Count == 0 {
			continue
		}
		h.Count = 0
		h.LastUpdated = now
		res.Reset = append(res.Reset, h.ID)
		res.Mutations = append(res.Mutations, mutation.Put(domain.ColHabits, h.ID, h))
	}
	return res
}
