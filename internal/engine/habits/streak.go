// Package habits implements the habit scoring engine: streaks, point
// multipliers, the toggle state machine, stale detection and explicit
// resets. Every entry point is pure: it takes the current records plus an
// explicit "now" and returns updated copies with the mutations to persist.
package habits

import (
	"math"
	"sort"

	"github.com/dkravets/hearthledger/internal/domain"
)

// Multiplier returns the point multiplier earned by a streak: 2.0 from
// seven consecutive periods, 1.5 from three, 1.0 otherwise.
func Multiplier(streak int) float64 {
	switch {
	case streak >= 7:
		return 2.0
	case streak >= 3:
		return 1.5
	default:
		return 1.0
	}
}

// CalculateStreak recomputes a habit's streak from its full completion set:
// the length of the contiguous run ending at the latest date, where
// consecutive completions are no further apart than the period length
// (1 day or 7 days). It is always derived from the whole set, never
// incremented in place, so edits and deletions can never leave it stale.
func CalculateStreak(dates []domain.DateKey, period domain.HabitPeriod) int {
	sorted := sortedUnique(dates)
	if len(sorted) == 0 {
		return 0
	}

	maxGap := period.Days()
	streak := 1
	for i := 0; i < len(sorted)-1; i++ {
		gap := domain.DaysBetween(sorted[i+1], sorted[i])
		if gap <= 0 || gap > maxGap {
			break
		}
		streak++
	}
	return streak
}

// sortedUnique returns the dates most-recent-first with duplicates and
// unparsable keys dropped.
func sortedUnique(dates []domain.DateKey) []domain.DateKey {
	seen := make(map[domain.DateKey]bool, len(dates))
	out := make([]domain.DateKey, 0, len(dates))
	for _, d := range dates {
		if seen[d] {
			continue
		}
		if _, err := d.Time(); err != nil {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Before(out[i]) })
	return out
}

// award is the points one completion earns at the given streak: basePoints
// (negated for negative habits) times the multiplier, floored to an
// integer.
func award(h domain.Habit, streak int) int {
	base := float64(h.BasePoints)
	if h.Type == domain.HabitNegative {
		base = -base
	}
	return int(math.Floor(base * Multiplier(streak)))
}

// PointsForDate replays the award one completion earned when it was made:
// the streak is recomputed from the prefix of completions up to and
// including the date. Dates not in the set earn nothing.
func PointsForDate(h domain.Habit, date domain.DateKey) int {
	if !h.HasCompleted(date) {
		return 0
	}
	var prefix []domain.DateKey
	for _, d := range h.CompletedDates {
		if !date.Before(d) {
			prefix = append(prefix, d)
		}
	}
	return award(h, CalculateStreak(prefix, h.Period))
}

// withDate returns the completion set with date inserted, keeping the
// most-recent-first ordering the records are stored in.
func withDate(dates []domain.DateKey, date domain.DateKey) []domain.DateKey {
	for _, d := range dates {
		if d == date {
			return dates
		}
	}
	out := append([]domain.DateKey{date}, dates...)
	sort.Slice(out, func(i, j int) bool { return out[j].Before(out[i]) })
	return out
}

// withoutDate returns the completion set with date removed.
func withoutDate(dates []domain.DateKey, date domain.DateKey) []domain.DateKey {
	out := make([]domain.DateKey, 0, len(dates))
	for _, d := range dates {
		if d != date {
			out = append(out, d)
		}
	}
	return out
}
