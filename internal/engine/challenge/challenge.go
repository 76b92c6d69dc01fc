// Package challenge derives challenge standings from linked habit
// completions. Nothing is stored; progress is recomputed on every read.
package challenge

import (
	"time"

	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/engine/habits"
)

// Progress computes a challenge's current value and percentage from its
// linked habits over the challenge window. Count challenges sum completions
// inside the window; point challenges sum the per-date awards those
// completions earned. The percentage is clamped to [0, 100].
func Progress(c domain.Challenge, linked []domain.Habit, now time.Time) domain.ChallengeProgress {
	byID := make(map[string]bool, len(c.HabitIDs))
	for _, id := range c.HabitIDs {
		byID[id] = true
	}

	total := 0
	for _, h := range linked {
		if !byID[h.ID] {
			continue
		}
		dates := datesInWindow(h.CompletedDates, c.StartDate, c.EndDate)
		switch c.TargetType {
		case domain.TargetPoints:
			total += pointsForDates(h, dates)
		default:
			total += len(dates)
		}
	}

	progress := domain.ChallengeProgress{CurrentValue: total}
	if c.TargetValue > 0 {
		pct := float64(total) / float64(c.TargetValue) * 100
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		progress.ProgressPercent = pct
	}
	return progress
}

// datesInWindow filters the completion set to [start, end], inclusive on
// both ends: a challenge ending on a date still counts that day.
func datesInWindow(dates []domain.DateKey, start, end domain.DateKey) []domain.DateKey {
	var out []domain.DateKey
	for _, d := range dates {
		if !d.Before(start) && !end.Before(d) {
			out = append(out, d)
		}
	}
	return out
}

// pointsForDates replays the award each completion earned, the same
// derivation the reconciliation pass uses.
func pointsForDates(h domain.Habit, dates []domain.DateKey) int {
	total := 0
	for _, d := range dates {
		total += habits.PointsForDate(h, d)
	}
	return total
}
