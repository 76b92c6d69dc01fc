// Package reconcile recomputes the cached household point counters from
// the authoritative completion history. The invariant is one line: the
// cache equals f(event history). Whenever the stored counters disagree
// with the recomputation, the recomputation wins.
package reconcile

import (
	"time"

	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/engine/habits"
	"github.com/dkravets/hearthledger/internal/mutation"
)

// RecomputePoints derives the daily/weekly/total counters from scratch.
// Submissions are the finer-grained source when a habit has them (they
// record multi-unit awards exactly); otherwise each completion date is
// replayed at the streak it was earned at.
func RecomputePoints(hs []domain.Habit, subs []domain.HabitSubmission, now time.Time) domain.HouseholdPoints {
	today := domain.NewDateKey(now)

	subsByHabit := make(map[string][]domain.HabitSubmission)
	for _, s := range subs {
		subsByHabit[s.HabitID] = append(subsByHabit[s.HabitID], s)
	}

	points := domain.HouseholdPoints{
		LastDailyReset:  today,
		LastWeeklyReset: domain.NewDateKey(domain.StartOfWeek(now)),
	}

	add := func(date domain.DateKey, pts int) {
		points.Total += pts
		if date == today {
			points.Daily += pts
		}
		if t, err := date.Time(); err == nil && domain.SameWeek(t, now) {
			points.Weekly += pts
		}
	}

	for _, h := range hs {
		if habitSubs := subsByHabit[h.ID]; len(habitSubs) > 0 {
			for _, s := range habitSubs {
				add(s.Date, s.PointsEarned)
			}
			continue
		}
		for _, d := range h.CompletedDates {
			add(d, habits.PointsForDate(h, d))
		}
	}
	return points
}

// Reconcile compares the cached counters with the recomputation and
// returns the overwrite mutation when they disagree. Running it twice
// yields the same counters, so duplicate scheduler triggers are safe.
func Reconcile(household domain.Household, hs []domain.Habit, subs []domain.HabitSubmission, now time.Time) (domain.HouseholdPoints, []mutation.Mutation) {
	want := RecomputePoints(hs, subs, now)
	if want == household.Points {
		return want, nil
	}
	household.Points = want
	return want, []mutation.Mutation{mutation.Put(domain.ColHouseholds, household.ID, household)}
}
